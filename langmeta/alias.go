package langmeta

import "sort"

// Map is the project's language alias table (the "language_map" config key).
// Keys are the codes used in local file and folder names, values are the
// codes the remote project uses.
type Map map[string]string

// ToRemote maps a code recovered from a local path to its remote code.
// Used on the push side before normalization.
func (m Map) ToRemote(local string) string {
	if remote, ok := m[local]; ok {
		return remote
	}
	return local
}

// ToLocal maps a remote code to the code used for local folder naming.
// Used on the pull side when building target paths. When several local
// codes alias the same remote code, the lexically smallest one wins.
func (m Map) ToLocal(remote string) string {
	locals := make([]string, 0, len(m))
	for local, r := range m {
		if r == remote {
			locals = append(locals, local)
		}
	}
	if len(locals) == 0 {
		return remote
	}
	sort.Strings(locals)
	return locals[0]
}
