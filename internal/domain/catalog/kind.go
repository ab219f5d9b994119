package catalog

import (
	"errors"
	"strings"
)

// ErrUnknownKind is returned when a type tag does not name a bookable item kind.
var ErrUnknownKind = errors.New("catalog: unknown item kind")

// Kind tags the five bookable and reviewable item kinds.
type Kind string

const (
	KindTrip       Kind = "trip"
	KindStay       Kind = "stay"
	KindRestaurant Kind = "restaurant"
	KindRental     Kind = "rental"
	KindActivity   Kind = "activity"
)

// Kinds lists every valid kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindTrip, KindStay, KindRestaurant, KindRental, KindActivity}
}

// ParseKind normalizes a raw type tag. Matching is case-insensitive because
// clients historically sent both "Trip" and "trip".
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindTrip:
		return KindTrip, nil
	case KindStay:
		return KindStay, nil
	case KindRestaurant:
		return KindRestaurant, nil
	case KindRental:
		return KindRental, nil
	case KindActivity:
		return KindActivity, nil
	default:
		return "", ErrUnknownKind
	}
}

// Display renders the kind the way booking payloads historically spelled it
// ("Trip", "Stay", ...).
func (k Kind) Display() string {
	if k == "" {
		return ""
	}
	s := string(k)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

// Ref points at a concrete item through its kind tag.
type Ref struct {
	Kind   Kind
	ItemID ItemID
}

func (r Ref) String() string {
	return string(r.Kind) + "/" + string(r.ItemID)
}
