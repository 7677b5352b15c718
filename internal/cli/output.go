package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
)

type field struct {
	name  string
	value string
}

// print renders v as JSON, or fields as "name:  value" lines.
func (p printer) print(v any, fields ...field) error {
	if p.json {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", f.name, f.value)
	}
	return tw.Flush()
}

func (p printer) account(a *idsdk.Account) error {
	return p.print(a,
		field{"href", a.Href},
		field{"username", a.Username},
		field{"email", a.Email},
		field{"name", a.FullName()},
		field{"status", string(a.Status)},
	)
}

func (p printer) apiKey(k *idsdk.APIKey) error {
	var owner string
	if k.Account != nil {
		owner = k.Account.Href
	}
	return p.print(k,
		field{"id", k.ID},
		field{"href", k.Href},
		field{"secret", k.Secret},
		field{"status", string(k.Status)},
		field{"account", owner},
	)
}
