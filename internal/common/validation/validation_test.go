package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "geev-escrow/internal/common/errors"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "title ok", err: ValidateTitle("Spring drop")},
		{name: "title blank", err: ValidateTitle("   "), wantErr: true},
		{name: "title at limit", err: ValidateTitle(strings.Repeat("a", MaxTitleLength))},
		{name: "title too long", err: ValidateTitle(strings.Repeat("a", MaxTitleLength+1)), wantErr: true},
		{name: "empty description", err: ValidateDescription("")},
		{name: "description too long", err: ValidateDescription(strings.Repeat("a", MaxDescriptionLength+1)), wantErr: true},
		{name: "empty category", err: ValidateCategory("")},
		{name: "category too long", err: ValidateCategory(strings.Repeat("a", MaxCategoryLength+1)), wantErr: true},
		{name: "invalid utf8", err: ValidateDescription("\xff\xfe"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.wantErr {
				assert.NoError(t, tt.err)
				return
			}
			assert.True(t, apperrors.HasCode(tt.err, apperrors.ErrCodeValidation))
		})
	}
}
