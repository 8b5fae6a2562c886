package models

import (
	"strings"
)

type LinkType string

const (
	LinkTypeWebsite LinkType = "website"
	LinkTypeBook    LinkType = "book"
	LinkTypeArticle LinkType = "article"
	LinkTypeMusic   LinkType = "music"
	LinkTypeVideo   LinkType = "video"
)

// linkTypeOrder is the match table used by Classify. Order matters: the
// first type whose token is contained in the hint wins.
var linkTypeOrder = []LinkType{
	LinkTypeWebsite,
	LinkTypeBook,
	LinkTypeArticle,
	LinkTypeMusic,
	LinkTypeVideo,
}

type (
	// LinkMetadata is what enrichment produces for a URL.
	LinkMetadata struct {
		Title       *string
		Description *string
		Image       *string
		LinkType    LinkType
	}
)

// Classify maps a free-form og:type value onto a LinkType. The match is a
// case-sensitive substring test, so "video.movie" is a video. A nil or
// unrecognised hint is a website.
func Classify(hint *string) LinkType {
	if hint == nil {
		return LinkTypeWebsite
	}
	for _, t := range linkTypeOrder {
		if strings.Contains(*hint, string(t)) {
			return t
		}
	}
	return LinkTypeWebsite
}

func LinkTypes() []LinkType {
	out := make([]LinkType, len(linkTypeOrder))
	copy(out, linkTypeOrder)
	return out
}

func (t LinkType) Valid() bool {
	for _, v := range linkTypeOrder {
		if t == v {
			return true
		}
	}
	return false
}
