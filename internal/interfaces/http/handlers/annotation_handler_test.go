package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringEntries_KeepsPositions(t *testing.T) {
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[42,"policy",null,{"a":1},"",[1],false]`), &raw))

	got := stringEntries(raw)
	require.Len(t, got, 7)
	for i, p := range got {
		switch i {
		case 1:
			require.NotNil(t, p)
			assert.Equal(t, "policy", *p)
		case 4:
			require.NotNil(t, p)
			assert.Equal(t, "", *p)
		default:
			assert.Nil(t, p, "entry %d", i)
		}
	}
}

func TestAnnotateDocumentRequest_Phrases(t *testing.T) {
	var req annotateDocumentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"phrases":[1,"claim number"]}`), &req))
	assert.Equal(t, []string{"", "claim number"}, req.phrases())

	assert.Nil(t, annotateDocumentRequest{}.phrases())
}
