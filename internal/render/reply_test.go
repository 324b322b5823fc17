// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply_Article(t *testing.T) {
	reply, err := ParseReply(`{"title":"T","sections":[{"heading":"H","content":"c","subsections":[{"heading":"S","content":"s"}]}],
		"summary_table":"| a |\n|---|\n| 1 |","citations":[{"number":2,"url":"https://x.test"},{"number":"5","url":"https://y.test"}]}`)
	require.NoError(t, err)

	a, ok := reply.(*Article)
	require.True(t, ok)
	assert.Equal(t, "T", a.Title)
	require.Len(t, a.Sections, 1)
	assert.Equal(t, "S", a.Sections[0].Subsections[0].Heading)
	assert.Equal(t, CitationNumber(2), a.Citations[0].Number)
	assert.Equal(t, CitationNumber(5), a.Citations[1].Number)
}

func TestParseReply_EmptySectionsIsResearch(t *testing.T) {
	reply, err := ParseReply(`{"sections":[],"summary":"s"}`)
	require.NoError(t, err)
	r, ok := reply.(*Research)
	require.True(t, ok)
	assert.Equal(t, "s", r.Summary)
}

func TestParseReply_Research(t *testing.T) {
	reply, err := ParseReply(`{"summary":"sum","analysis":"an","methodology":"m",
		"findings":[{"point":"p","evidence":"e","citations":[1,"2"]}],
		"limitations":"l","sources":["https://s.test"],"nextSteps":"n","citations":["https://c.test"]}`)
	require.NoError(t, err)

	r, ok := reply.(*Research)
	require.True(t, ok)
	assert.Equal(t, "n", r.NextSteps)
	assert.Equal(t, []string{"1", "2"}, []string(r.Findings[0].Citations))
	assert.Equal(t, []string{"https://s.test"}, []string(r.Sources))
}

func TestParseReply_Malformed(t *testing.T) {
	for _, in := range []string{"{not json", "", "[1,2]", `"text"`, "null", `{"sections":[{"heading":1}]}`} {
		_, err := ParseReply(in)
		assert.ErrorIs(t, err, ErrMalformedReply, "input %q", in)
	}
}

func TestCitationNumber_NonIntegral(t *testing.T) {
	reply, err := ParseReply(`{"title":"T","sections":[{"heading":"H","content":"c"}],"citations":[{"number":1.5,"url":"u"}]}`)
	require.NoError(t, err)
	assert.Equal(t, CitationNumber(-1), reply.(*Article).Citations[0].Number)
}

func TestCitationNumber_Unusable(t *testing.T) {
	for _, raw := range []string{`null`, `"one"`, `""`, `true`} {
		reply, err := ParseReply(`{"title":"T","sections":[{"heading":"H","content":"c"}],"citations":[{"number":` + raw + `,"url":"u"}]}`)
		require.NoError(t, err, raw)
		assert.Equal(t, CitationNumber(-1), reply.(*Article).Citations[0].Number, raw)
	}
}
