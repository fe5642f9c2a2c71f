// Package sniffer identifies blog cover images from their leading bytes.
package sniffer

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

type ImageType string

const (
	TypeJPEG ImageType = "jpeg"
	TypePNG  ImageType = "png"
	TypeGIF  ImageType = "gif"
	TypeWEBP ImageType = "webp"
	TypeAVIF ImageType = "avif"
	TypeSVG  ImageType = "svg"
)

var (
	ErrUnknownType  = errors.New("unsupported image type")
	ErrTypeMismatch = errors.New("file extension does not match content")
)

type Result struct {
	Type ImageType
	MIME string
}

var signatures = []struct {
	match  func([]byte) bool
	result Result
}{
	{isJPEG, Result{TypeJPEG, "image/jpeg"}},
	{isPNG, Result{TypePNG, "image/png"}},
	{isGIF, Result{TypeGIF, "image/gif"}},
	{isWEBP, Result{TypeWEBP, "image/webp"}},
	{isAVIF, Result{TypeAVIF, "image/avif"}},
	{isSVG, Result{TypeSVG, "image/svg+xml"}},
}

func DetectHead(head []byte) (Result, error) {
	if len(head) > 512 {
		head = head[:512]
	}
	for _, sig := range signatures {
		if sig.match(head) {
			return sig.result, nil
		}
	}
	return Result{}, ErrUnknownType
}

// DetectFile sniffs data and checks it against the type implied by fileName's
// extension, when the extension names a known image type.
func DetectFile(fileName string, data []byte) (Result, error) {
	result, err := DetectHead(data)
	if err != nil {
		return Result{}, err
	}

	declared := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	if idx := strings.Index(declared, ";"); idx >= 0 {
		declared = declared[:idx]
	}
	if strings.HasPrefix(declared, "image/") && declared != result.MIME {
		return Result{}, fmt.Errorf("%w: %s looks like %s", ErrTypeMismatch, fileName, result.MIME)
	}
	return result, nil
}

func isJPEG(head []byte) bool {
	return len(head) > 3 && head[0] == 0xff && head[1] == 0xd8 && head[2] == 0xff
}

func isPNG(head []byte) bool {
	magic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return bytes.HasPrefix(head, magic)
}

func isGIF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a"))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP"))
}

func isAVIF(head []byte) bool {
	return len(head) >= 12 && string(head[4:8]) == "ftyp" && bytes.Contains(head[8:], []byte("avif"))
}

func isSVG(head []byte) bool {
	trimmed := strings.TrimSpace(string(head))
	return strings.HasPrefix(trimmed, "<svg") ||
		(strings.HasPrefix(trimmed, "<?xml") && strings.Contains(trimmed, "<svg"))
}
