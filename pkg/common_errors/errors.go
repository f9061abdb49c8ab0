package common_errors

import (
	"golang.org/x/xerrors"
)

var (
	ErrEmptyPayload            = xerrors.New("payload cannot be empty")
	ErrEmptyTopic              = xerrors.New("topic name cannot be empty")
	ErrInvalidTotalMessages    = xerrors.New("total messages should be >= 0")
	ErrInvalidWorkers          = xerrors.New("number of workers should be >= 1")
	ErrInvalidRate             = xerrors.New("messages per second should be >= 1")
	ErrInvalidPartitions       = xerrors.New("number of partitions should be >= 1")
	ErrInvalidDelay            = xerrors.New("pacing delay should be >= 0")
	ErrUnrecognizedSerdeFormat = xerrors.New("Unrecognized serde format")
	ErrUnrecognizedPacing      = xerrors.New("Unrecognized pacing mode")
	ErrUnrecognizedAckPolicy   = xerrors.New("Unrecognized ack policy")
	ErrUnknownDriver           = xerrors.New("unknown broker driver")
	ErrNoBrokers               = xerrors.New("broker list is empty")
	ErrClientClosed            = xerrors.New("broker client is closed")
	ErrFlushTimeout            = xerrors.New("flush did not complete before deadline")
	ErrMissingRecordID         = xerrors.New("record has no id field")
	ErrEmptyIndex              = xerrors.New("record index is empty")
)

func IsClientClosedError(err error) bool {
	return xerrors.Is(err, ErrClientClosed)
}
