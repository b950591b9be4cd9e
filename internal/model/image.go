package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the content identity of raw image bytes: the hex-encoded
// SHA-256 digest. Identical byte sequences always yield the same
// fingerprint, and the seen-image store treats fingerprints as globally
// unique across all documents ever processed.
type Fingerprint string

// FingerprintBytes computes the Fingerprint of raw bytes.
func FingerprintBytes(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// ExtractedImage is a raster image pulled out of a normalized document
// during visual extraction. It is created by the extractor, mutated once
// by the caption fan-out to attach a caption, and then read-only.
type ExtractedImage struct {
	// Page is the 1-based page number the image was embedded on.
	Page int `json:"page"`

	// Index is the 1-based position of the image within its page.
	Index int `json:"index"`

	// Format is the encoded byte format as declared by the document
	// (e.g. "png", "jpg", "tiff").
	Format string `json:"format"`

	// Width is the decoded pixel width.
	Width int `json:"width"`

	// Height is the decoded pixel height.
	Height int `json:"height"`

	// Data holds the raw encoded image bytes. Retained through the
	// pipeline because the caption request needs the payload even when
	// persisting to the scratch directory failed.
	Data []byte `json:"-"`

	// Fingerprint is the content identity of Data.
	Fingerprint Fingerprint `json:"fingerprint"`

	// SavedPath is where the image bytes were persisted in the scratch
	// directory. Empty when persistence failed; the image remains
	// eligible for captioning regardless.
	SavedPath string `json:"saved_path,omitempty"`

	// Caption is the AI-generated description of the image.
	// Empty until the caption fan-out runs. Set to CaptionFailed when
	// caption generation failed for this image.
	Caption string `json:"caption,omitempty"`
}

// CaptionFailed is the sentinel caption substituted when caption
// generation fails, so downstream consumers never see a missing field.
const CaptionFailed = "Error generating caption"
