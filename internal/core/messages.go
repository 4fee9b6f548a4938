package core

// User-facing result descriptions
const (
	MsgUserNotFound       = "User was not found"
	MsgMissionNotFound    = "Mission was not found"
	MsgMissionSetNotFound = "Mission set was not found"
	MsgRequestNotFound    = "Mission request was not found"
	MsgRequestResolved    = "Mission request is already resolved"
	MsgMissionBusy        = "Mission is being processed, try again"
	MsgEmptyAnswer        = "Answer is empty"
	MsgIncorrectAnswer    = "Answer is incorrect"
	MsgTriesOver          = "No tries left, mission failed"
	MsgTimeRequired       = "Elapsed time is required"
	MsgTimeout            = "Time is over, mission failed"
	MsgCoordinateRequired = "Coordinate is required"
	MsgCoordinateInvalid  = "Coordinate is invalid"
	MsgAliasInvalid       = "Place alias is invalid"
	MsgStillHome          = "You are still at home"
	MsgIsNear             = "You are near, keep looking"
	MsgWrongPlace         = "This is not the place"
	MsgWaitingReview      = "Proof sent for review"
	MsgAlreadyWaiting     = "Proof is already waiting for review"
	MsgCensored           = "This mission has been censored"
	MsgKindDeedEmpty      = "Describe your kind deed"
	MsgUserUpdateFailed   = "Failed to save progress, try again"
	MsgInvalidStars       = "Stars must be between 1 and 3"
	MsgHintNotFound       = "Hint was not found"
	MsgNotEnoughCoins     = "Not enough coins"
	MsgHintNotAvailable   = "Hint is not available yet"
	MsgUnknownQuality     = "Unknown person quality"
	MsgInvalidMission     = "Mission is invalid"
	MsgMissionSetMembers  = "Mission set refers to unknown missions"
	MsgUserExists         = "User already exists"
	MsgCatalogDefect      = "Mission catalog is misconfigured"
	MsgMissionNotActive   = "Mission is not active for the user"
	MsgInvalidNickName    = "Nickname must be 2 to 50 characters"
)
