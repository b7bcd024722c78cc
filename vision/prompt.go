package vision

// Prompt is sent with every image. The model is asked for a bare JSON object
// with the two keys ParseReply looks for.
const Prompt = `Analyze this rooftop image and estimate:
1. Usable rooftop area in square meters (excluding chimneys, vents, shadows)
2. Number of 350W solar panels that can be installed (each panel is ~2m²)

Respond ONLY with valid JSON in this exact format:
{
  "usable_area_m2": <number>,
  "recommended_panels": <number>
}`

// Generation parameters are fixed so replies stay short and close to
// deterministic.
const (
	Temperature     = 0.1
	MaxOutputTokens = 300

	ImageMimeType = "image/jpeg"
)
