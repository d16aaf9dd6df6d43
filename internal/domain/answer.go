package domain

// Answer is the closed input variant the transport adapter hands to the core.
// The adapter owns keyboard labels and emojis; by the time input reaches the
// core it is either free-form numeric text or a canonical option token.
type Answer interface {
	isAnswer()
}

// NumericAnswer carries raw text expected to parse as a number.
type NumericAnswer struct {
	Value string
}

// OptionAnswer carries a canonical token from a closed vocabulary,
// e.g. "low"/"normal"/"high" or "1".."5".
type OptionAnswer struct {
	Token string
}

func (NumericAnswer) isAnswer() {}
func (OptionAnswer) isAnswer()  {}
