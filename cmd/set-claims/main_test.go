package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminClaims_RevokeKeepsOtherClaims(t *testing.T) {
	existing := map[string]interface{}{"admin": true, "role": "admin", "club": "mapo", "tier": 2}

	got := adminClaims(existing, false)

	assert.Equal(t, map[string]interface{}{"club": "mapo", "tier": 2}, got)
	assert.Contains(t, existing, "admin")
}

func TestAdminClaims_GrantMergesIntoExisting(t *testing.T) {
	got := adminClaims(map[string]interface{}{"club": "mapo"}, true)
	assert.Equal(t, map[string]interface{}{"admin": true, "role": "admin", "club": "mapo"}, got)

	got = adminClaims(nil, true)
	assert.Equal(t, map[string]interface{}{"admin": true, "role": "admin"}, got)
}
