package domain

// SelfParent is the parent marker meaning the page itself is dead,
// not a link found within it.
const SelfParent = "SELF"

// DeadLink is a broken target together with the page it was found on.
type DeadLink struct {
	URL    string
	Parent string
}

// IsSelf reports whether the dead link is the page itself.
func (d DeadLink) IsSelf() bool {
	return d.Parent == SelfParent
}
