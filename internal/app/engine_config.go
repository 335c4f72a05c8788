package app

// EngineConfig carries the privileged identities and fee policy the engine
// runs with. It is injected into every service; there is no ambient admin
// state.
type EngineConfig struct {
	AdminAccountID string
	FeeRecipient   string
	FeePercentage  uint32 // basis points, e.g. 200 = 2.00%
}

func (c EngineConfig) isAdmin(caller string) bool {
	return caller != "" && caller == c.AdminAccountID
}
