package model

// AttemptKind is a tagged variant distinguishing official exams (identified
// by an external registration number, results written to durable storage)
// from informal practice tests (results kept in the ephemeral local store).
type AttemptKind struct {
	official           bool
	registrationNumber string
}

// OfficialAttempt tags an attempt with its registration number.
func OfficialAttempt(registrationNumber string) AttemptKind {
	return AttemptKind{official: true, registrationNumber: registrationNumber}
}

// InformalAttempt tags a self-practice attempt with no registration.
func InformalAttempt() AttemptKind {
	return AttemptKind{}
}

// IsOfficial reports whether the attempt targets durable result storage.
func (k AttemptKind) IsOfficial() bool {
	return k.official
}

// RegistrationNumber returns the registration number for official attempts.
func (k AttemptKind) RegistrationNumber() (string, bool) {
	return k.registrationNumber, k.official
}
