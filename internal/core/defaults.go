package core

var defaultSpamSamples = []string{
	"URGENT! You have won $1000000! Click here now!",
	"Free money! No strings attached! Act now!",
	"Congratulations! You are our lucky winner!",
	"Limited time offer! Buy now or miss out forever!",
	"Work from home and earn $5000 per week!",
	"Lose weight fast with this miracle pill!",
	"Hot singles in your area want to meet you!",
	"Your account will be closed unless you verify now!",
	"Claim your prize now! Click this link immediately!",
	"Make money fast! No experience needed!",
}

var defaultHamSamples = []string{
	"Meeting scheduled for tomorrow at 2 PM",
	"Thanks for your email, I'll get back to you soon",
	"The project deadline is next Friday",
	"Please review the attached document",
	"Happy birthday! Hope you have a great day",
	"Reminder: Team lunch is at noon today",
	"The weather forecast shows rain tomorrow",
	"Your order has been shipped and will arrive Monday",
	"Conference call moved to 3 PM today",
	"Thanks for the great work on the presentation",
}

// DefaultTrainingSamples returns the seed corpus used when no training data exists
func DefaultTrainingSamples() []TrainingSample {
	samples := make([]TrainingSample, 0, len(defaultSpamSamples)+len(defaultHamSamples))
	for _, text := range defaultSpamSamples {
		samples = append(samples, TrainingSample{Text: text, Label: LabelSpam})
	}
	for _, text := range defaultHamSamples {
		samples = append(samples, TrainingSample{Text: text, Label: LabelHam})
	}
	return samples
}
