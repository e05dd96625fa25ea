package model

import (
	"strings"

	"github.com/pkg/errors"
)

// RawTable is the shape every ingestion adapter hands the normalizer: the
// original header in file order and one string-valued map per row. No
// semantics are attached until normalization.
type RawTable struct {
	Columns []string
	Rows    []map[string]string
}

// Column kinds drive coercion and sentinel behaviour. Identifiers and dates
// reject the row when invalid; counts and money coerce to zero; labels
// default to the null sentinel (empty string).
const (
	KindIdentifier = "identifier"
	KindDate       = "date"
	KindCount      = "count"
	KindMoney      = "money"
	KindLabel      = "label"
)

type ColumnSpec struct {
	Canonical string
	Kind      string
	Required  bool
	// Aliases are source-specific raw names accepted for this column. The
	// canonical name itself is always accepted. Matching is case-insensitive.
	Aliases []string
}

type SourceSchema struct {
	Source  string
	Columns []ColumnSpec
}

// SchemaRegistry holds the per-source canonical schemas. It is validated at
// construction; the normalizer never probes rows for shape at runtime.
type SchemaRegistry struct {
	schemas map[string]*SourceSchema
}

func defaultSchemas() []*SourceSchema {
	return []*SourceSchema{
		{
			Source: SourceGoogleAds,
			Columns: []ColumnSpec{
				{Canonical: "client_id", Kind: KindIdentifier, Required: true},
				{Canonical: "campaign_id", Kind: KindLabel},
				{Canonical: "date", Kind: KindDate, Required: true},
				{Canonical: "impressions", Kind: KindCount},
				{Canonical: "clicks", Kind: KindCount},
				{Canonical: "spend", Kind: KindMoney, Aliases: []string{"cost_usd", "spend_usd", "cost"}},
				{Canonical: "device_type", Kind: KindLabel, Aliases: []string{"device"}},
				{Canonical: "geo", Kind: KindLabel, Aliases: []string{"region", "country"}},
			},
		},
		{
			Source: SourceFacebookAds,
			Columns: []ColumnSpec{
				{Canonical: "client_id", Kind: KindIdentifier, Required: true, Aliases: []string{"client"}},
				{Canonical: "campaign_id", Kind: KindLabel, Aliases: []string{"fb_campaign_id"}},
				{Canonical: "date", Kind: KindDate, Required: true},
				{Canonical: "impressions", Kind: KindCount, Aliases: []string{"reach"}},
				{Canonical: "clicks", Kind: KindCount},
				{Canonical: "spend", Kind: KindMoney, Aliases: []string{"spend_usd"}},
				{Canonical: "device_type", Kind: KindLabel, Aliases: []string{"platform"}},
				{Canonical: "geo", Kind: KindLabel},
			},
		},
		{
			Source: SourceEmailCampaigns,
			Columns: []ColumnSpec{
				{Canonical: "client_id", Kind: KindIdentifier, Required: true},
				{Canonical: "campaign_id", Kind: KindLabel, Aliases: []string{"email_id"}},
				{Canonical: "date", Kind: KindDate, Required: true},
				{Canonical: "sent", Kind: KindCount, Aliases: []string{"emails_sent"}},
				{Canonical: "opened", Kind: KindCount, Aliases: []string{"opens", "emails_opened"}},
				{Canonical: "clicked", Kind: KindCount, Aliases: []string{"email_clicks", "clicks"}},
			},
		},
		{
			Source: SourceWebTraffic,
			Columns: []ColumnSpec{
				{Canonical: "client_id", Kind: KindIdentifier, Required: true},
				{Canonical: "date", Kind: KindDate, Required: true},
				{Canonical: "sessions", Kind: KindCount, Aliases: []string{"visits"}},
				{Canonical: "referrer_channel", Kind: KindLabel, Aliases: []string{"referrer", "traffic_source"}},
			},
		},
		{
			Source: SourceClients,
			Columns: []ColumnSpec{
				{Canonical: "client_id", Kind: KindIdentifier, Required: true},
				{Canonical: "name", Kind: KindLabel, Aliases: []string{"client_name"}},
				{Canonical: "industry", Kind: KindLabel},
				{Canonical: "account_manager", Kind: KindLabel},
				{Canonical: "signup_date", Kind: KindDate},
			},
		},
		{
			Source: SourceRevenue,
			Columns: []ColumnSpec{
				{Canonical: "client_id", Kind: KindIdentifier, Required: true},
				{Canonical: "date", Kind: KindDate, Required: true},
				{Canonical: "amount", Kind: KindMoney, Required: true, Aliases: []string{"attributed_revenue", "revenue", "amount_usd"}},
			},
		},
	}
}

// NewSchemaRegistry builds the default registry and validates every schema:
// kinds must be known, each source needs a required identifier column, and
// no raw name may map to two canonical columns.
func NewSchemaRegistry() (*SchemaRegistry, error) {
	registry := &SchemaRegistry{schemas: make(map[string]*SourceSchema)}
	for _, schema := range defaultSchemas() {
		if err := validateSchema(schema); err != nil {
			return nil, err
		}
		registry.schemas[schema.Source] = schema
	}
	return registry, nil
}

func validateSchema(schema *SourceSchema) error {
	hasIdentifier := false
	seen := make(map[string]string)

	for _, col := range schema.Columns {
		switch col.Kind {
		case KindIdentifier, KindDate, KindCount, KindMoney, KindLabel:
		default:
			return errors.Errorf("schema %s: unknown column kind [ %s ] for %s",
				schema.Source, col.Kind, col.Canonical)
		}
		if col.Kind == KindIdentifier && col.Required {
			hasIdentifier = true
		}

		for _, name := range append([]string{col.Canonical}, col.Aliases...) {
			key := strings.ToLower(name)
			if owner, exists := seen[key]; exists && owner != col.Canonical {
				return errors.Errorf("schema %s: raw column [ %s ] mapped to both %s and %s",
					schema.Source, name, owner, col.Canonical)
			}
			seen[key] = col.Canonical
		}
	}

	if !hasIdentifier {
		return errors.Errorf("schema %s: a required identifier column must be defined", schema.Source)
	}
	return nil
}

// AddAliases merges mapping overrides (source -> raw name -> canonical name)
// into the registry, e.g. from the config mapping overrides YAML.
func (r *SchemaRegistry) AddAliases(overrides map[string]map[string]string) error {
	for source, mapping := range overrides {
		schema, exists := r.schemas[source]
		if !exists {
			return errors.Errorf("mapping override for unknown source [ %s ]", source)
		}
		for rawName, canonical := range mapping {
			found := false
			for i := range schema.Columns {
				if schema.Columns[i].Canonical == canonical {
					schema.Columns[i].Aliases = append(schema.Columns[i].Aliases, rawName)
					found = true
					break
				}
			}
			if !found {
				return errors.Errorf("mapping override %s: unknown canonical column [ %s ]", source, canonical)
			}
		}
		if err := validateSchema(schema); err != nil {
			return err
		}
	}
	return nil
}

func (r *SchemaRegistry) Get(source string) (*SourceSchema, error) {
	schema, exists := r.schemas[source]
	if !exists {
		return nil, errors.Errorf("no schema defined for source [ %s ]", source)
	}
	return schema, nil
}

// resolveColumns maps canonical column names to the raw header names present
// in the table. A required column with no raw match makes the table
// structurally broken for this source.
func resolveColumns(schema *SourceSchema, rawColumns []string) (map[string]string, error) {
	byLower := make(map[string]string, len(rawColumns))
	for _, raw := range rawColumns {
		byLower[strings.ToLower(strings.TrimSpace(raw))] = raw
	}

	resolved := make(map[string]string)
	for _, col := range schema.Columns {
		for _, name := range append([]string{col.Canonical}, col.Aliases...) {
			if raw, exists := byLower[strings.ToLower(name)]; exists {
				resolved[col.Canonical] = raw
				break
			}
		}
		if _, exists := resolved[col.Canonical]; !exists && col.Required {
			return nil, errors.Wrapf(ErrMissingKeyColumns,
				"source %s: required column %s not found in %v", schema.Source, col.Canonical, rawColumns)
		}
	}
	return resolved, nil
}
