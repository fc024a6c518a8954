package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/jrsteele09/go-oauth-client/internal/utils"
	"github.com/jrsteele09/go-oauth-client/oauth2"
)

const (
	outputTable = "table"
	outputJSON  = "json"

	redacted = "*******************"
)

func printToken(w io.Writer, opts *rootOptions, resp *oauth2.TokenResponse) error {
	switch opts.output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case outputTable, "":
		renderTokenTable(w, resp, opts.showTokens)
		return nil
	}
	return fmt.Errorf("unknown output format %q", opts.output)
}

func renderTokenTable(w io.Writer, resp *oauth2.TokenResponse, showTokens bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("FIELD"), text.FgHiCyan.Sprint("VALUE")})

	secret := func(v *string) string {
		switch {
		case v == nil:
			return ""
		case showTokens:
			return *v
		}
		return redacted
	}

	t.AppendRow(table.Row{"access_token", secret(resp.AccessToken)})
	t.AppendRow(table.Row{"token_type", resp.TokenType})
	if resp.ExpiresIn > 0 {
		t.AppendRow(table.Row{"expires_in", strconv.Itoa(resp.ExpiresIn) + "s"})
	}
	optional := []struct {
		name  string
		value string
	}{
		{"refresh_token", secret(resp.RefreshToken)},
		{"id_token", secret(resp.IdToken)},
		{"scope", resp.Scope},
		{"instance_url", resp.InstanceURL},
		{"id", resp.ID},
		{"issued_at", resp.IssuedAt},
		{"signature", secret(resp.Signature)},
	}
	for _, f := range optional {
		if f.value != "" {
			t.AppendRow(table.Row{f.name, f.value})
		}
	}

	if claims, err := resp.AccessTokenClaims(); err == nil {
		t.AppendSeparator()
		keys := make([]string, 0, len(claims))
		for k := range claims {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.AppendRow(table.Row{text.FgYellow.Sprint("claim." + k), formatClaim(k, claims[k])})
		}
	}

	t.Render()
	if !showTokens && utils.Value(resp.AccessToken) != "" {
		fmt.Fprintln(w, text.FgHiBlack.Sprint("Token values are hidden, use --show-tokens or -o json to print them."))
	}
}

// formatClaim renders NumericDate claims as timestamps.
func formatClaim(name string, v any) string {
	switch name {
	case "exp", "iat", "nbf":
		if f, ok := v.(float64); ok {
			return time.Unix(int64(f), 0).UTC().Format(time.RFC3339)
		}
	}
	return fmt.Sprintf("%v", v)
}
