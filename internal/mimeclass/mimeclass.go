package mimeclass

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Class is a coarse file classification used for iconography only.
type Class string

const (
	Unknown  Class = "unknown"
	Image    Class = "image"
	Document Class = "document"
	Archive  Class = "archive"
	Design   Class = "design"
)

// DefaultMIME is used when the picker supplies no hint.
const DefaultMIME = "application/octet-stream"

var extensions = map[string]Class{
	".psd":    Design,
	".ai":     Design,
	".fig":    Design,
	".xd":     Design,
	".sketch": Design,

	".png":  Image,
	".jpg":  Image,
	".jpeg": Image,
	".gif":  Image,
	".webp": Image,
	".svg":  Image,
	".heic": Image,

	".pdf":  Document,
	".doc":  Document,
	".docx": Document,
	".xls":  Document,
	".xlsx": Document,
	".ppt":  Document,
	".pptx": Document,
	".txt":  Document,
	".csv":  Document,
	".md":   Document,
	".rtf":  Document,
	".odt":  Document,

	".zip": Archive,
	".rar": Archive,
	".7z":  Archive,
	".tar": Archive,
	".gz":  Archive,
	".tgz": Archive,
	".bz2": Archive,
	".xz":  Archive,
}

var designMIMEs = map[string]struct{}{
	"image/vnd.adobe.photoshop": {},
	"application/postscript":    {},
	"application/illustrator":   {},
}

var archiveMIMEs = map[string]struct{}{
	"application/zip":              {},
	"application/x-7z-compressed":  {},
	"application/gzip":             {},
	"application/x-tar":            {},
	"application/x-rar-compressed": {},
	"application/vnd.rar":          {},
	"application/x-bzip2":          {},
	"application/x-xz":             {},
}

var documentMIMEs = map[string]struct{}{
	"application/pdf":               {},
	"application/msword":            {},
	"application/rtf":               {},
	"application/vnd.ms-excel":      {},
	"application/vnd.ms-powerpoint": {},
}

// Infer classifies a file from its name first and its MIME hint second.
func Infer(name, hint string) Class {
	lower := strings.ToLower(strings.TrimSpace(name))
	if strings.Contains(lower, "figma") {
		return Design
	}

	ext := filepath.Ext(lower)
	if c, ok := extensions[ext]; ok {
		return c
	}

	if c := FromMIME(hint); c != Unknown {
		return c
	}

	if ext != "" {
		return FromMIME(mime.TypeByExtension(ext))
	}

	return Unknown
}

// FromMIME classifies a MIME string. Aliases and parameters are resolved
// through mimetype's tree, so subtypes inherit the class of their parent
// unless they match a class themselves.
func FromMIME(hint string) Class {
	mt, _, err := mime.ParseMediaType(hint)
	if err != nil || mt == "" {
		return Unknown
	}

	if c := classify(mt); c != Unknown {
		return c
	}

	for m := mimetype.Lookup(mt); m != nil; m = m.Parent() {
		if c := classify(m.String()); c != Unknown {
			return c
		}
	}

	return Unknown
}

func classify(mt string) Class {
	mt, _, _ = strings.Cut(mt, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))

	if _, ok := designMIMEs[mt]; ok {
		return Design
	}

	if _, ok := archiveMIMEs[mt]; ok {
		return Archive
	}

	if _, ok := documentMIMEs[mt]; ok {
		return Document
	}

	switch {
	case strings.HasPrefix(mt, "image/"):
		return Image
	case strings.HasPrefix(mt, "text/"):
		return Document
	case strings.HasPrefix(mt, "application/vnd.openxmlformats-officedocument."),
		strings.HasPrefix(mt, "application/vnd.oasis.opendocument."):
		return Document
	}

	return Unknown
}
