package document

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

func TestNewDocument(t *testing.T) {
	tid, uid := uuid.New(), uuid.New()
	d, err := NewDocument(tid, uid, "../../etc/claim.pdf", "application/pdf", 42, "abc")
	require.NoError(t, err)
	assert.Equal(t, "claim.pdf", d.Filename)
	assert.Equal(t, "tenants/"+tid.String()+"/documents/"+d.ID.String()+"/claim.pdf", d.ObjectKey)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a.txt", SanitizeFilename(`C:\temp\a.txt`))
	assert.Equal(t, "upload", SanitizeFilename(""))
	assert.Equal(t, "upload", SanitizeFilename("/"))
}

func TestDocument_Validate(t *testing.T) {
	d := &Document{ID: uuid.New(), TenantID: uuid.New(), Filename: "x", Confidence: 1.5}
	assert.True(t, errors.IsCode(d.Validate(), errors.ErrCodeValidation))

	d.Confidence = 0.7
	assert.NoError(t, d.Validate())

	d.TenantID = uuid.Nil
	assert.Error(t, d.Validate())
}

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{Limit: 0, Offset: -3}.Normalize()
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = ListFilter{Limit: 50, Offset: 10}.Normalize()
	assert.Equal(t, 50, f.Limit)
	assert.Equal(t, 10, f.Offset)
}
