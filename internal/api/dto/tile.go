package dto

// Path parameters of a tile request.
type TileParams struct {
	Source string `validate:"required,oneof=vrr otp hafas"`
	Origin string `validate:"required"`
	Size   int    `validate:"gte=64,lte=256"`
	Z      int    `validate:"gte=0,lte=30"`
	X      int    `validate:"gte=0"`
	Y      int    `validate:"gte=0"`
}
