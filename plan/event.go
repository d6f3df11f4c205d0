package plan

import (
	"sync/atomic"
	"time"
)

// EventLevel is the severity an Event is reported at.
type EventLevel int

const (
	LevelInfo EventLevel = iota
	LevelWarn
	LevelError
)

func (l EventLevel) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// EventType tags which variant of Event a value carries.
type EventType string

const (
	EventSetOperatorProperty         EventType = "SetOperatorProperty"
	EventPartition                   EventType = "Partition"
	EventCreateOperator              EventType = "CreateOperator"
	EventRemoveOperator              EventType = "RemoveOperator"
	EventStartOperator               EventType = "StartOperator"
	EventStopOperator                EventType = "StopOperator"
	EventSetPhysicalOperatorProperty EventType = "SetPhysicalOperatorProperty"
	EventStartContainer              EventType = "StartContainer"
	EventStopContainer               EventType = "StopContainer"
	EventChangeLogicalPlan           EventType = "ChangeLogicalPlan"
	EventOperatorError               EventType = "OperatorError"
	EventContainerError              EventType = "ContainerError"
)

// AllEventTypes lists every operator-event tag, in declaration order; the
// event log uses this to pre-create one bucket per tag.
var AllEventTypes = []EventType{
	EventSetOperatorProperty,
	EventPartition,
	EventCreateOperator,
	EventRemoveOperator,
	EventStartOperator,
	EventStopOperator,
	EventSetPhysicalOperatorProperty,
	EventStartContainer,
	EventStopContainer,
	EventChangeLogicalPlan,
	EventOperatorError,
	EventContainerError,
}

var eventIDSeq atomic.Int64

func nextEventID() int64 { return eventIDSeq.Add(1) }

// Header is the set of fields every Event carries regardless of its
// variant, flattening what would otherwise be a deep inheritance
// hierarchy of event types into one struct.
type Header struct {
	ID        int64
	Timestamp int64 // milliseconds since epoch
	Level     EventLevel
	Reason    string
	Type      EventType
}

// Event is a closed tagged-variant family: only the fields relevant to
// Header.Type are meaningful on a given value, and consumers switch on
// Type rather than on Go's dynamic type.
type Event struct {
	Header

	OperatorName string
	OperatorID   int64
	Property     string
	Value        any

	OldN, NewN int

	ContainerID  string
	NodeID       string
	FailureID    string
	ExitStatus   int
	ErrorMessage string

	Request any
}

func newHeader(level EventLevel, typ EventType, reason string) Header {
	return Header{ID: nextEventID(), Timestamp: time.Now().UnixMilli(), Level: level, Type: typ, Reason: reason}
}

func NewSetOperatorPropertyEvent(operatorName, property string, value any) Event {
	return Event{Header: newHeader(LevelInfo, EventSetOperatorProperty, ""), OperatorName: operatorName, Property: property, Value: value}
}

func NewPartitionEvent(operatorName string, oldN, newN int) Event {
	return Event{Header: newHeader(LevelInfo, EventPartition, ""), OperatorName: operatorName, OldN: oldN, NewN: newN}
}

func NewCreateOperatorEvent(operatorName string, operatorID int64) Event {
	return Event{Header: newHeader(LevelInfo, EventCreateOperator, ""), OperatorName: operatorName, OperatorID: operatorID}
}

func NewRemoveOperatorEvent(operatorName string, operatorID int64) Event {
	return Event{Header: newHeader(LevelInfo, EventRemoveOperator, ""), OperatorName: operatorName, OperatorID: operatorID}
}

func NewStartOperatorEvent(operatorName string, operatorID int64, containerID, failureID string) Event {
	return Event{Header: newHeader(LevelInfo, EventStartOperator, ""), OperatorName: operatorName, OperatorID: operatorID, ContainerID: containerID, FailureID: failureID}
}

func NewStopOperatorEvent(operatorName string, operatorID int64, containerID, failureID string) Event {
	return Event{Header: newHeader(LevelWarn, EventStopOperator, ""), OperatorName: operatorName, OperatorID: operatorID, ContainerID: containerID, FailureID: failureID}
}

func NewSetPhysicalOperatorPropertyEvent(operatorName string, operatorID int64, property string, value any) Event {
	return Event{Header: newHeader(LevelInfo, EventSetPhysicalOperatorProperty, ""), OperatorName: operatorName, OperatorID: operatorID, Property: property, Value: value}
}

func NewStartContainerEvent(containerID, nodeID string) Event {
	return Event{Header: newHeader(LevelInfo, EventStartContainer, ""), ContainerID: containerID, NodeID: nodeID}
}

func NewStopContainerEvent(containerID string, exitStatus int, failureID string) Event {
	return Event{Header: newHeader(LevelWarn, EventStopContainer, ""), ContainerID: containerID, ExitStatus: exitStatus, FailureID: failureID}
}

func NewChangeLogicalPlanEvent(request any) Event {
	return Event{Header: newHeader(LevelInfo, EventChangeLogicalPlan, ""), Request: request}
}

func NewOperatorErrorEvent(operatorName string, operatorID int64, containerID, errorMessage, failureID string) Event {
	return Event{Header: newHeader(LevelError, EventOperatorError, ""), OperatorName: operatorName, OperatorID: operatorID, ContainerID: containerID, ErrorMessage: errorMessage, FailureID: failureID}
}

func NewContainerErrorEvent(containerID, errorMessage string) Event {
	return Event{Header: newHeader(LevelError, EventContainerError, ""), ContainerID: containerID, ErrorMessage: errorMessage}
}

// StatsRecorder is the event-consumer capability plan mutations feed;
// both methods may fail with an I/O error surfaced to the caller.
type StatsRecorder interface {
	RecordContainers(containers map[string]any, timestamp int64) error
	RecordOperators(operators []Event, timestamp int64) error
}
