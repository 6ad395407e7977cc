package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePullURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		project string
		number  int
		wantErr bool
	}{
		{"github URL", "https://github.com/infopark/fiona/pull/42", "infopark/fiona", 42, false},
		{"trailing path", "https://github.com/infopark/fiona/pull/42/files", "infopark/fiona", 42, false},
		{"enterprise host", "https://git.example.com/team/app/pull/7", "team/app", 7, false},
		{"issue URL", "https://github.com/infopark/fiona/issues/42", "", 0, true},
		{"no number", "https://github.com/infopark/fiona/pull/", "", 0, true},
		{"empty", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, number, err := ParsePullURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNotPullURL))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.project, project)
			assert.Equal(t, tt.number, number)
		})
	}
}

func TestErrorMessages(t *testing.T) {
	pe := &PaginationLimitError{Resource: "comments", Limit: 100}
	assert.Contains(t, pe.Error(), ">= 100 comments")

	cause := errors.New("i/o timeout")
	te := &APITimeoutError{Op: "get pull request", Attempts: 3, Err: cause}
	assert.Contains(t, te.Error(), "after 3 attempts")
	assert.ErrorIs(t, te, cause)
}
