package policies

// Actor is the pre-validated principal the auth collaborator hands to every
// operation that needs authorization.
type Actor struct {
	ID    string
	Admin bool
}

func (a Actor) CanActOn(ownerID string) bool {
	return a.Admin || a.ID == ownerID
}
