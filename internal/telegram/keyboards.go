package telegram

// Button labels are the user-visible text; the flow layer only ever sees the
// tokens they map to.
const (
	labelAggressionLow    = "😌 Low"
	labelAggressionNormal = "😐 Normal"
	labelAggressionHigh   = "😠 High"

	labelMood1 = "😞 Very bad"
	labelMood2 = "🙁 Bad"
	labelMood3 = "😐 Okay"
	labelMood4 = "🙂 Good"
	labelMood5 = "😄 Excellent"
)

var aggressionKeyboard = [][]string{
	{labelAggressionLow, labelAggressionNormal, labelAggressionHigh},
}

var moodKeyboard = [][]string{
	{labelMood1, labelMood2, labelMood3},
	{labelMood4, labelMood5},
}

var labelTokens = map[string]string{
	labelAggressionLow:    "low",
	labelAggressionNormal: "normal",
	labelAggressionHigh:   "high",

	labelMood1: "1",
	labelMood2: "2",
	labelMood3: "3",
	labelMood4: "4",
	labelMood5: "5",
}

// tokenFor maps a button label back to its flow token. The second return is
// false for free-form text.
func tokenFor(label string) (string, bool) {
	token, ok := labelTokens[label]
	return token, ok
}
