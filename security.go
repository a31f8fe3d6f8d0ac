package xmlentity

import "strings"

const (
	// DefaultEntityExpansionLimit matches the limit used by common XML
	// processors.
	DefaultEntityExpansionLimit = 64000

	// AccessAll allows every protocol. AccessNone, or an empty policy,
	// allows none. Any other policy is a comma separated list of
	// protocols such as "file,http".
	AccessAll  = "all"
	AccessNone = "none"
)

type defaultSecurityManager struct {
	limits map[LimitKind]int
}

// NewSecurityManager creates the default SecurityManager. A limit of 0
// or less disables the entity expansion limit.
func NewSecurityManager(expansionLimit int) SecurityManager {
	return &defaultSecurityManager{
		limits: map[LimitKind]int{
			EntityExpansionLimit: expansionLimit,
		},
	}
}

// protocolOf returns the scheme of systemID. Ids without one are local
// files.
func protocolOf(systemID string) string {
	i := strings.IndexByte(systemID, ':')
	if i < 0 {
		return "file"
	}
	protocol := systemID[:i]
	if strings.EqualFold(protocol, "jar") {
		rest := systemID[i+1:]
		if j := strings.IndexByte(rest, ':'); j >= 0 {
			return rest[:j]
		}
	}
	return protocol
}

func isProtocolAllowed(protocol, policy string) bool {
	if policy == "" || strings.EqualFold(policy, AccessNone) {
		return false
	}
	for _, p := range strings.Split(policy, ",") {
		if strings.EqualFold(strings.TrimSpace(p), protocol) {
			return true
		}
	}
	return false
}

func (m *defaultSecurityManager) CheckAccess(systemID, policy string) string {
	if systemID == "" || strings.EqualFold(policy, AccessAll) {
		return ""
	}
	protocol := protocolOf(systemID)
	if isProtocolAllowed(protocol, policy) {
		return ""
	}
	return protocol
}

func (m *defaultSecurityManager) IsOverLimit(kind LimitKind, count int) bool {
	limit := m.limits[kind]
	return limit > 0 && count > limit
}

func (m *defaultSecurityManager) Limit(kind LimitKind) int {
	return m.limits[kind]
}
