package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alanle1011/contract-marketplace/base/ptr"
)

func TestMakeBsonM(t *testing.T) {
	type patchable struct {
		Owner    *string `bson:"owner,omitempty"`
		Approved *bool   `bson:"approved,omitempty"`
		Skipped  *string `bson:"-"`
	}

	m, err := MakeBsonM(&patchable{
		Owner:   ptr.String("0xabc"),
		Skipped: ptr.String("ignored"),
	})
	assert.NoError(t, err)
	assert.Equal(t, "0xabc", m["owner"])
	assert.NotContains(t, m, "approved")
	assert.NotContains(t, m, "-")
}
