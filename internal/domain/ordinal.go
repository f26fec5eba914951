package domain

import (
	"fmt"

	"github.com/Sirbiscuits1/Marketplace/pkg/fees"
)

// Ordinal is a uniquely inscribed digital asset tracked by the registry.
// Origin is the sole identity key: globally unique and stable across owner
// changes. Every other attribute may be absent until the asset is indexed.
type Ordinal struct {
	Origin       string    `json:"origin"`
	Txid         string    `json:"txid"`
	Vout         uint32    `json:"vout"`
	OwnerAddress string    `json:"owner_address"`
	Satoshis     fees.Sats `json:"satoshis"`

	ContentType       *string `json:"content_type,omitempty"`
	ContentSize       *uint64 `json:"content_size,omitempty"`
	BlockHeight       *uint64 `json:"block_height,omitempty"`
	InscriptionNumber *uint64 `json:"inscription_number,omitempty"`
	Name              string  `json:"name,omitempty"`
}

// Outpoint returns the txid_vout reference for this ordinal's UTXO.
func (o *Ordinal) Outpoint() string {
	return fmt.Sprintf("%s_%d", o.Txid, o.Vout)
}

// ContentURL derives the read-only content location on the given host.
// Falls back to the outpoint when the origin is not yet indexed.
func (o *Ordinal) ContentURL(contentHost string) string {
	id := o.Origin
	if id == "" {
		id = o.Outpoint()
	}
	return fmt.Sprintf("%s/files/inscriptions/%s", contentHost, id)
}

// UtxoRef identifies the UTXO that currently carries an ordinal.
type UtxoRef struct {
	Txid     string    `json:"txid"`
	Vout     uint32    `json:"vout"`
	Satoshis fees.Sats `json:"satoshis"`
	Script   string    `json:"script"` // base64
}

// WalletView is one address's indexed ordinals as last reported by the
// registry, with fetch metadata.
type WalletView struct {
	Address     string    `json:"address"`
	TotalCount  int       `json:"total_count"`
	Ordinals    []Ordinal `json:"ordinals"`
	FetchTimeMS uint64    `json:"fetch_time_ms"`
}
