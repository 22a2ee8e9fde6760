package dto

type BoardCardResponse struct {
	NoteId   string  `json:"note_id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ZIndex   int64   `json:"z_index"`
	Color    string  `json:"color"`
	TextTone string  `json:"text_tone"`
}

// MoveCardRequest drags a card by (dx, dy) inside the visible board area.
type MoveCardRequest struct {
	NoteId string  `json:"-"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

type PaintCardRequest struct {
	NoteId string `json:"-"`
	Color  string `json:"color" validate:"required"`
}
