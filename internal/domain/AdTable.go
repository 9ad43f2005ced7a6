package domain

import "io"

// DataSource identifica de onde o dataset será lido: um caminho ou um reader já aberto
type DataSource struct {
	Name   string
	Path   string
	Reader io.Reader
}

// Label retorna o identificador legível da origem
func (s DataSource) Label() string {
	if s.Path != "" {
		return s.Path
	}
	if s.Name != "" {
		return s.Name
	}
	return "stdin"
}

// AdTable é o dataset carregado em memória
type AdTable struct {
	Source        string          `json:"source"`
	Records       []AdRecord      `json:"records"`
	Columns       map[string]bool `json:"columns"`
	DroppedRows   int             `json:"dropped_rows"`
	CoercedValues int             `json:"coerced_values"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// HasColumn indica se a coluna estava presente no cabeçalho da entrada
func (t *AdTable) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	return t.Columns[name]
}

// Len retorna o número de linhas válidas
func (t *AdTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// LoadSummary resume o carregamento para o resultado final
type LoadSummary struct {
	Source        string   `json:"source"`
	Rows          int      `json:"rows"`
	Columns       int      `json:"columns"`
	DroppedRows   int      `json:"dropped_rows"`
	CoercedValues int      `json:"coerced_values"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Summary gera o LoadSummary da tabela
func (t *AdTable) Summary() LoadSummary {
	if t == nil {
		return LoadSummary{}
	}
	return LoadSummary{
		Source:        t.Source,
		Rows:          len(t.Records),
		Columns:       len(t.Columns),
		DroppedRows:   t.DroppedRows,
		CoercedValues: t.CoercedValues,
		Warnings:      t.Warnings,
	}
}
