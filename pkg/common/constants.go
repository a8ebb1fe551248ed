package common

const (
	// RedisKeyLastPrice stores the most recent quote per instrument, for
	// operational inspection only.
	RedisKeyLastPrice = "last_price:%s"
)
