package main

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turmeiro/boxtally/internal/errors"
)

// The dispatcher switches on kong's rendered command strings; this pins them
// so a renamed flag or argument cannot silently unmap a command.
func TestCommandStrings(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"picker", "add", "Maria"}, "picker add <name>"},
		{[]string{"picker", "rename", "id1", "Maria Silva"}, "picker rename <id> <name>"},
		{[]string{"picker", "hide", "id1"}, "picker hide <id>"},
		{[]string{"picker", "list", "--all"}, "picker list"},
		{[]string{"orchard", "add", "Talhão 1"}, "orchard add <name>"},
		{[]string{"day", "new", "2024-06-10", "--pickers", "a,b", "--orchard", "o1", "--price", "3.00"}, "day new <date>"},
		{[]string{"day", "show"}, "day show"},
		{[]string{"day", "show", "2024-06-10"}, "day show <date>"},
		{[]string{"day", "close", "2024-06-10"}, "day close <date>"},
		{[]string{"day", "open"}, "day open"},
		{[]string{"shift", "new", "2024-06-10", "--orchard", "o1", "--price", "4"}, "shift new <date>"},
		{[]string{"shift", "board"}, "shift board"},
		{[]string{"mark", "2024-06-10", "Maria", "3"}, "mark <date> <picker> <delta>"},
		{[]string{"count", "adjust", "c1", "--", "-1"}, "count adjust <count-id> <delta>"},
		{[]string{"count", "reset", "c1"}, "count reset <count-id>"},
		{[]string{"report", "day", "2024-06-10", "--csv"}, "report day <date>"},
		{[]string{"report", "week", "2024-06-10"}, "report week <date>"},
		{[]string{"week", "close", "2024-06-10", "--note", "paga"}, "week close <date>"},
		{[]string{"week", "reopen", "2024-06-10"}, "week reopen <date>"},
		{[]string{"week", "status", "2024-06-10"}, "week status <date>"},
		{[]string{"export", "-"}, "export <file>"},
		{[]string{"import", "dump.json", "--merge"}, "import <file>"},
		{[]string{"reset", "--force"}, "reset"},
		{[]string{"stats"}, "stats"},
	}

	for _, tc := range cases {
		var cli = CLI
		parser, err := kong.New(&cli)
		require.NoError(t, err)
		ctx, err := parser.Parse(tc.args)
		require.NoError(t, err, "args %v", tc.args)
		assert.Equal(t, tc.want, ctx.Command(), "args %v", tc.args)
	}
}

func TestParsePrice(t *testing.T) {
	d, err := parsePrice(" 2,50 ")
	require.NoError(t, err)
	assert.Equal(t, "2.5", d.String())

	d, err = parsePrice("3.00")
	require.NoError(t, err)
	assert.Equal(t, "3", d.String())

	_, err = parsePrice("abc")
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}
