package trade

import "github.com/google/uuid"

func newOfferUUID() uuid.UUID { return uuid.New() }
