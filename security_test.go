package xmlentity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckAccess(t *testing.T) {
	sm := NewSecurityManager(DefaultEntityExpansionLimit)

	tests := []struct {
		SystemID string
		Policy   string
		Denied   string
	}{
		{SystemID: "file:///a.ent", Policy: AccessAll},
		{SystemID: "http://example.com/a.ent", Policy: "ALL"},
		{SystemID: "file:///a.ent", Policy: AccessNone, Denied: "file"},
		{SystemID: "file:///a.ent", Policy: "", Denied: "file"},
		{SystemID: "http://example.com/a.ent", Policy: "file, http"},
		{SystemID: "https://example.com/a.ent", Policy: "file,http", Denied: "https"},
		{SystemID: "HTTP://example.com/a.ent", Policy: "http"},
		{SystemID: "jar:file:///lib.jar!/a.ent", Policy: "file"},
		{SystemID: "jar:http://example.com/lib.jar!/a.ent", Policy: "file", Denied: "http"},
		{SystemID: "relative/a.ent", Policy: "file"},
		{SystemID: "relative/a.ent", Policy: "http", Denied: "file"},
		{SystemID: "", Policy: AccessNone},
	}

	for _, tc := range tests {
		t.Run(tc.SystemID+" with "+tc.Policy, func(t *testing.T) {
			require.Equal(t, tc.Denied, sm.CheckAccess(tc.SystemID, tc.Policy))
		})
	}
}

func TestIsOverLimit(t *testing.T) {
	sm := NewSecurityManager(10)
	require.Equal(t, 10, sm.Limit(EntityExpansionLimit))
	require.False(t, sm.IsOverLimit(EntityExpansionLimit, 10))
	require.True(t, sm.IsOverLimit(EntityExpansionLimit, 11))

	unlimited := NewSecurityManager(0)
	require.False(t, unlimited.IsOverLimit(EntityExpansionLimit, 1<<30))
}
