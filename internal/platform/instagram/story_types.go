package instagram

import (
	"path/filepath"
	"strings"
)

// StoryKind tells which upload path a story file takes.
type StoryKind int

const (
	StoryUnsupported StoryKind = iota
	StoryPhoto
	StoryVideo
)

var storyExtensions = map[string]StoryKind{
	".jpg":  StoryPhoto,
	".jpeg": StoryPhoto,
	".png":  StoryPhoto,
	".mp4":  StoryVideo,
	".mov":  StoryVideo,
}

// StoryKindOf picks the story kind from the file extension, ignoring case.
func StoryKindOf(path string) StoryKind {
	return storyExtensions[strings.ToLower(filepath.Ext(path))]
}

func (k StoryKind) String() string {
	switch k {
	case StoryPhoto:
		return "photo"
	case StoryVideo:
		return "video"
	default:
		return "unsupported"
	}
}
