package gateway

// Speaker routes speech through connected phones. It satisfies the
// announce.Speaker interface.
type Speaker struct {
	gw *Gateway
}

// NewSpeaker wraps a gateway as a speech sink.
func NewSpeaker(gw *Gateway) *Speaker {
	return &Speaker{gw: gw}
}

// Speak sends the text to every connected phone's TTS.
func (s *Speaker) Speak(text string) error {
	return s.gw.SendSpeak(text)
}

// Interrupt cancels any speech in progress on connected phones.
func (s *Speaker) Interrupt() error {
	return s.gw.SendInterrupt()
}
