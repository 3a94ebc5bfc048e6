package mazebot

// Counts rising edges on a single encoder channel. There's no direction
// sensing, so the count only ever goes up until Reset.
type EncoderCounter struct {
	board     Board
	line      Line
	count     uint32
	lastLevel bool
}

func NewEncoderCounter(board Board, line Line) *EncoderCounter {
	return &EncoderCounter{board: board, line: line}
}

func (encoder *EncoderCounter) Poll() uint32 {
	return encoder.observe(encoder.board.Read(encoder.line))
}

func (encoder *EncoderCounter) observe(level bool) uint32 {
	if level && !encoder.lastLevel {
		encoder.count++
	}
	encoder.lastLevel = level
	return encoder.count
}

func (encoder *EncoderCounter) Reset() {
	encoder.count = 0
	encoder.lastLevel = false
}

// Count without sampling the line
func (encoder *EncoderCounter) Count() uint32 {
	return encoder.count
}
