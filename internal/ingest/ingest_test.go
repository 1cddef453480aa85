package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []model.Row
	}{
		{
			name:  "basic",
			input: "Client Name,List Price\nJane Doe,250000\nBob Roe,75000\n",
			want: []model.Row{
				{"Client Name": "Jane Doe", "List Price": "250000"},
				{"Client Name": "Bob Roe", "List Price": "75000"},
			},
		},
		{
			name:  "byte order mark and crlf",
			input: "\ufeffClient Name,Agent\r\nJane Doe,Alice\r\n",
			want:  []model.Row{{"Client Name": "Jane Doe", "Agent": "Alice"}},
		},
		{
			name:  "quoted commas",
			input: "Client Name,Client Market\n\"Doe, Jane\",\"Austin, Round Rock\"\n",
			want:  []model.Row{{"Client Name": "Doe, Jane", "Client Market": "Austin, Round Rock"}},
		},
		{
			name:  "short and blank rows",
			input: "Lead,purchased value,purchased address\nJane Doe\n\n,,\nBob Roe,100,1 Main\n",
			want: []model.Row{
				{"Lead": "Jane Doe", "purchased value": "", "purchased address": ""},
				{"Lead": "Bob Roe", "purchased value": "100", "purchased address": "1 Main"},
			},
		},
		{
			name:  "semicolon delimited",
			input: "Client Name;Agent\nJane Doe;Alice\n",
			want:  []model.Row{{"Client Name": "Jane Doe", "Agent": "Alice"}},
		},
		{
			name:  "tab delimited",
			input: "Client Name\tAgent\nJane Doe\tAlice\n",
			want:  []model.Row{{"Client Name": "Jane Doe", "Agent": "Alice"}},
		},
		{
			name:  "header only",
			input: "Client Name,Agent\n",
			want:  nil,
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadRows(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestReadRows_LazyQuotes(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("Client Name,Notes\nJane Doe,said \"hi\" twice\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `said "hi" twice`, rows[0]["Notes"])
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Leads:     writeFile(t, dir, "leads.csv", "Client Name\nJane Doe\nBob Roe\n"),
		Referrals: writeFile(t, dir, "referrals.csv", "Client Name,Lead Source\nJane Doe,Market VIP\n"),
		Sold:      writeFile(t, dir, "sold.csv", "Lead,purchased sale date\n"),
	}

	var mu sync.Mutex
	seen := make(map[Kind]int)
	data, err := Load(context.Background(), paths, Options{
		OnLoaded: func(kind Kind, rows int) {
			mu.Lock()
			defer mu.Unlock()
			seen[kind] = rows
		},
	})

	require.NoError(t, err)
	assert.Len(t, data.Leads, 2)
	assert.Len(t, data.Referrals, 1)
	assert.Empty(t, data.Sold)
	assert.Equal(t, map[Kind]int{KindLeads: 2, KindReferrals: 1, KindSold: 0}, seen)
	assert.Equal(t, 3, paths.Count())
}

func TestLoad_OptionalExports(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{Leads: writeFile(t, dir, "leads.csv", "Client Name\nJane Doe\n")}

	data, err := Load(context.Background(), paths, Options{})

	require.NoError(t, err)
	assert.Len(t, data.Leads, 1)
	assert.Nil(t, data.Referrals)
	assert.Nil(t, data.Sold)
	assert.Equal(t, 1, paths.Count())
}

func TestLoad_MissingLeads(t *testing.T) {
	_, err := Load(context.Background(), Paths{Referrals: "referrals.csv"}, Options{})

	require.ErrorIs(t, err, common.ErrMissingLeads)
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Please select a leads file", userErr.UserMessage)
}

func TestLoad_FailureAbortsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Leads:     writeFile(t, dir, "leads.csv", "Client Name\nJane Doe\n"),
		Referrals: filepath.Join(dir, "missing.csv"),
	}

	data, err := Load(context.Background(), paths, Options{})

	require.ErrorIs(t, err, common.ErrParseInput)
	assert.Contains(t, err.Error(), "referrals")
	assert.Nil(t, data.Leads, "no partial results")
}

func TestLoad_Canceled(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{Leads: writeFile(t, dir, "leads.csv", "Client Name\nJane Doe\n")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, paths, Options{})
	require.ErrorIs(t, err, context.Canceled)
}
