package domain

// CardKind is the display variant of an ordinal relative to the viewer.
// Computed from the data model so the rendering layer can match
// exhaustively instead of combining ad hoc booleans.
type CardKind int

const (
	// CardUnowned: viewer does not own it and it is not for sale.
	CardUnowned CardKind = iota
	// CardOwnedUnlisted: viewer owns it and may list it.
	CardOwnedUnlisted
	// CardOwnedListed: viewer owns it and has it listed; may cancel.
	CardOwnedListed
	// CardListedByOther: someone else's active listing; may purchase.
	CardListedByOther
)

func (k CardKind) String() string {
	switch k {
	case CardUnowned:
		return "unowned"
	case CardOwnedUnlisted:
		return "owned_unlisted"
	case CardOwnedListed:
		return "owned_listed"
	case CardListedByOther:
		return "listed_by_other"
	default:
		return "unknown"
	}
}

// ClassifyCard determines the card variant for an ordinal given the viewer's
// ordinal address and the listing covering the origin, if any.
func ClassifyCard(owner, viewerOrdAddress string, listed *Listing) CardKind {
	owned := viewerOrdAddress != "" && owner == viewerOrdAddress
	switch {
	case owned && listed != nil:
		return CardOwnedListed
	case owned:
		return CardOwnedUnlisted
	case listed != nil:
		return CardListedByOther
	default:
		return CardUnowned
	}
}
