package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jinford/u8g2gen/pkg/client"
	"github.com/jinford/u8g2gen/pkg/form"
	"github.com/jinford/u8g2gen/pkg/models"
	"github.com/jinford/u8g2gen/pkg/orchestrator"
)

func TestOutcomeError(t *testing.T) {
	tests := []struct {
		name    string
		outcome orchestrator.Outcome
		wantErr bool
		want    string
	}{
		{"completed", orchestrator.Outcome{Kind: orchestrator.OutcomeCompleted}, false, ""},
		{"failed", orchestrator.Outcome{Kind: orchestrator.OutcomeFailed, Message: "bad glyph table"}, true, "bad glyph table"},
		{"failed without message", orchestrator.Outcome{Kind: orchestrator.OutcomeFailed}, true, "不明なエラー"},
		{"timed out", orchestrator.Outcome{Kind: orchestrator.OutcomeTimedOut, Err: orchestrator.ErrWatchTimeout}, true, "timed_out"},
		{"malformed", orchestrator.Outcome{Kind: orchestrator.OutcomeMalformed, Err: orchestrator.ErrMalformedStreak}, true, "malformed"},
		{"unknown", orchestrator.Outcome{}, true, "不明な状態"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := outcomeError("t1", tt.outcome)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "t1")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOutcomeError_Wrapping(t *testing.T) {
	err := outcomeError("t1", orchestrator.Outcome{Kind: orchestrator.OutcomeCanceled})
	assert.ErrorIs(t, err, ErrCanceled)

	err = outcomeError("t1", orchestrator.Outcome{Kind: orchestrator.OutcomeTimedOut, Err: orchestrator.ErrWatchTimeout})
	assert.ErrorIs(t, err, orchestrator.ErrWatchTimeout)

	pollErr := &client.TransportError{Op: "status", Err: errors.New("connection reset")}
	err = outcomeError("t1", orchestrator.Outcome{Kind: orchestrator.OutcomePollError, Err: pollErr})
	var te *client.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestArtifactFilename(t *testing.T) {
	assert.Equal(t, "abc.h", artifactFilename("abc", client.ArtifactHeader))
	assert.Equal(t, "abc.bdf", artifactFilename("abc", client.ArtifactBDF))
	assert.Equal(t, "abc.log", artifactFilename("abc", client.ArtifactLog))
	assert.Equal(t, "x.h", artifactFilename("../../x", client.ArtifactHeader))
}

func TestRemainingPresets(t *testing.T) {
	all := form.PresetNames()
	assert.Equal(t, all, remainingPresets(nil))

	rest := remainingPresets([]string{"digits", "A_Z"})
	assert.Len(t, rest, len(all)-2)
	assert.NotContains(t, rest, "digits")
	assert.NotContains(t, rest, "A_Z")
}

func TestValidatePixelSize(t *testing.T) {
	assert.NoError(t, validatePixelSize("16"))
	assert.NoError(t, validatePixelSize(" 12 "))
	assert.ErrorIs(t, validatePixelSize("0"), form.ErrInvalidPixelSize)
	assert.ErrorIs(t, validatePixelSize("big"), form.ErrInvalidPixelSize)
}

func TestDisplayTask(t *testing.T) {
	task := &models.Task{
		Status: models.TaskStatusComplete,
		Step:   models.StepDone,
		Log:    []string{"otf2bdf ok", "bdfconv ok"},
		Result: &models.Result{
			Files:      models.Files{Header: "/api/download/t1/header", BDF: "/api/download/t1/bdf", Log: "/api/download/t1/log"},
			HeaderName: "font.h",
		},
	}

	var buf bytes.Buffer
	assert.NotPanics(t, func() {
		displayTask(&buf, "t1", task)
	})
	assert.Contains(t, buf.String(), "complete")
	assert.Contains(t, buf.String(), "/api/download/t1/header")
	assert.Contains(t, buf.String(), "bdfconv ok")
}

func TestDisplayTask_Failed(t *testing.T) {
	task := &models.Task{Status: models.TaskStatusFailed, Step: models.StepBDFConv, Error: "bad glyph table"}

	var buf bytes.Buffer
	displayTask(&buf, "t1", task)
	assert.Contains(t, buf.String(), "bad glyph table")
	assert.NotContains(t, buf.String(), "=== ログ ===")
}

func TestDisplayDeps(t *testing.T) {
	var buf bytes.Buffer
	displayDeps(&buf, &models.Deps{OTF2BDF: "/usr/bin/otf2bdf", MaxUploadMB: 20})

	assert.Contains(t, buf.String(), "/usr/bin/otf2bdf")
	assert.Contains(t, buf.String(), "見つかりません")
	assert.Contains(t, buf.String(), "20 MB")
}

func TestDisplayCharset(t *testing.T) {
	req := &form.GenerateRequest{Symbol: "my font", Presets: []string{"digits"}, CustomChars: "A"}
	cps, err := req.Codepoints()
	assert.NoError(t, err)

	var buf bytes.Buffer
	displayCharset(&buf, req, cps)

	assert.Contains(t, buf.String(), "my_font")
	assert.Contains(t, buf.String(), "my_font.h")
	assert.Contains(t, buf.String(), form.MapArg(cps))
}

func TestDisplayCharset_Empty(t *testing.T) {
	var buf bytes.Buffer
	displayCharset(&buf, &form.GenerateRequest{}, nil)

	assert.Contains(t, buf.String(), "文字集合が空です")
}

func TestDisplayPresets(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, displayPresets(&buf))

	for _, name := range form.PresetNames() {
		assert.Contains(t, buf.String(), name)
	}
}
