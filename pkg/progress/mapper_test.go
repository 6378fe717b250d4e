package progress

import (
	"testing"

	"github.com/jinford/u8g2gen/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name    string
		step    models.Step
		percent int
	}{
		{name: "未送信", step: models.StepNone, percent: 0},
		{name: "init", step: models.StepInit, percent: 10},
		{name: "otf2bdf", step: models.StepOTF2BDF, percent: 40},
		{name: "bdfconv", step: models.StepBDFConv, percent: 75},
		{name: "done", step: models.StepDone, percent: 100},
		{name: "未知のステップ", step: models.Step("render_preview"), percent: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Map(tt.step)
			assert.Equal(t, tt.percent, got.Percent)
			assert.NotEmpty(t, got.Label)
		})
	}
}

func TestMap_UnknownFallsBackToPreparing(t *testing.T) {
	assert.Equal(t, Map(models.StepNone), Map(models.Step("???")))
	assert.Equal(t, "準備中...", Map(models.Step("???")).Label)
}
