package draw

// seedMixer decorrelates the two PCG seed words.
const seedMixer = 0x9e3779b97f4a7c15

// Error context messages for wrapped errors
const (
	ErrContextFailedToSeed = "failed to seed random source"
	ErrContextPackRejected = "pack cannot be drawn from this table"
)
