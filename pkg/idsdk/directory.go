package idsdk

// Directory is an account store: the container accounts live in. An
// application maps one directory as its default store.
type Directory struct {
	Href        string `json:"href"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// AccountStore is anything accounts can be looked up in.
type AccountStore interface {
	AccountStoreHref() string
}

// AccountStoreHref implements AccountStore.
func (d *Directory) AccountStoreHref() string { return d.Href }
