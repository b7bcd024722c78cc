package stubvision

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"rooftop-vision/vision"
)

// Client is a deterministic, no-network analyzer intended for CI and local
// end-to-end runs. The estimate is derived from a hash of the image so the
// same photo always yields the same numbers.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

// AnalyzeRooftop returns an area between 20.0 and 119.9 m² and one panel per
// full 2 m² of it. The reply goes through the same parser as real providers.
func (c *Client) AnalyzeRooftop(_ context.Context, imageData []byte) *vision.Result {
	sum := sha256.Sum256(imageData)
	tenths := binary.BigEndian.Uint16(sum[:2]) % 1000
	area := 20 + float64(tenths)/10
	panels := int(area / 2)

	reply := fmt.Sprintf("```json\n{\"usable_area_m2\": %.1f, \"recommended_panels\": %d}\n```", area, panels)
	return vision.ParseReply(reply)
}
