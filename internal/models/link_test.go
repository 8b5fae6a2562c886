package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		hint *string
		want LinkType
	}{
		{"nil", nil, LinkTypeWebsite},
		{"empty", strPtr(""), LinkTypeWebsite},
		{"article", strPtr("article"), LinkTypeArticle},
		{"video subtype", strPtr("video.movie"), LinkTypeVideo},
		{"music subtype", strPtr("music.song"), LinkTypeMusic},
		{"book", strPtr("book"), LinkTypeBook},
		{"garbage", strPtr("unknown-garbage"), LinkTypeWebsite},
		{"case sensitive", strPtr("VIDEO"), LinkTypeWebsite},
		{"website wins by order", strPtr("website.video"), LinkTypeWebsite},
		{"book before article", strPtr("book.article"), LinkTypeBook},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.hint))
		})
	}
}

func TestLinkTypeValid(t *testing.T) {
	for _, lt := range LinkTypes() {
		assert.True(t, lt.Valid(), lt)
	}
	assert.False(t, LinkType("podcast").Valid())
	assert.Equal(t, []LinkType{"website", "book", "article", "music", "video"}, LinkTypes())
}
