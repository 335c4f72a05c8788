package notify

// Notifier delivers keeper notices (sweep summaries, due-soon warnings) to an
// external channel. This decouples the engine from the delivery mechanism; a
// nil Notifier is valid and means notices stop at the log.
type Notifier interface {
	Notify(text string) error
}
