package domain

import "testing"

func TestClassifyCard(t *testing.T) {
	listing := &Listing{ID: "lst-1", Origin: "aaaa_0"}

	tests := []struct {
		name   string
		owner  string
		viewer string
		listed *Listing
		want   CardKind
	}{
		{"not owned, not listed", "owner-a", "viewer", nil, CardUnowned},
		{"owned, not listed", "viewer", "viewer", nil, CardOwnedUnlisted},
		{"owned and listed", "viewer", "viewer", listing, CardOwnedListed},
		{"listed by another", "owner-a", "viewer", listing, CardListedByOther},
		{"no viewer session", "owner-a", "", nil, CardUnowned},
		{"no viewer session, listed", "owner-a", "", listing, CardListedByOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyCard(tt.owner, tt.viewer, tt.listed); got != tt.want {
				t.Errorf("ClassifyCard = %s, want %s", got, tt.want)
			}
		})
	}
}
