package plan

import (
	"math"
	"strconv"
	"time"

	"github.com/tarungka/flowplan/partition"
)

// Plan-level attributes. Defaults mirror the real values a distributed
// dataflow launcher uses when nothing overrides them.
var (
	FastPublisherSubscriber        = NewAttributeKeyWithDefault[bool]("FAST_PUBLISHER_SUBSCRIBER", false)
	HDFSTokenLifeTime              = NewAttributeKeyWithDefault[time.Duration]("HDFS_TOKEN_LIFE_TIME", 7*24*time.Hour)
	RMTokenLifeTime                = NewAttributeKey[time.Duration]("RM_TOKEN_LIFE_TIME")
	KeyTabFile                     = NewAttributeKey[string]("KEY_TAB_FILE")
	TokenRefreshAnticipatoryFactor = NewAttributeKeyWithDefault[float64]("TOKEN_REFRESH_ANTICIPATORY_FACTOR", 0.7)
	License                        = NewAttributeKey[string]("LICENSE")
	LicenseRoot                    = NewAttributeKey[string]("LICENSE_ROOT")
	LibraryJars                    = NewAttributeKey[string]("LIBRARY_JARS")
	Archives                       = NewAttributeKey[string]("ARCHIVES")
	Files                          = NewAttributeKey[string]("FILES")
	ContainersMaxCount             = NewAttributeKeyWithDefault[int]("CONTAINERS_MAX_COUNT", math.MaxInt32)
	ApplicationPath                = NewAttributeKey[string]("APPLICATION_PATH")
	Debug                          = NewAttributeKeyWithDefault[bool]("DEBUG", false)
	MasterMemoryMB                 = NewAttributeKeyWithDefault[int]("MASTER_MEMORY_MB", 1024)
	ContainerJVMOptions            = NewAttributeKey[string]("CONTAINER_JVM_OPTIONS")
)

func init() {
	FastPublisherSubscriber.WithCodec(strconv.ParseBool)
	Debug.WithCodec(strconv.ParseBool)
	MasterMemoryMB.WithCodec(strconv.Atoi)
	ContainersMaxCount.WithCodec(strconv.Atoi)
	HDFSTokenLifeTime.WithCodec(time.ParseDuration)
	RMTokenLifeTime.WithCodec(time.ParseDuration)
	TokenRefreshAnticipatoryFactor.WithCodec(func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
	KeyTabFile.WithCodec(func(s string) (string, error) { return s, nil })
	ApplicationPath.WithCodec(func(s string) (string, error) { return s, nil })
	License.WithCodec(func(s string) (string, error) { return s, nil })
}

// Subdirectory names under ApplicationPath.
const (
	CheckpointsSubdir = "checkpoints"
	StatsSubdir       = "stats"
	EventsSubdir      = "events"
)

// Artifact file names.
const (
	SerializedPlanFile = "dt-conf.ser"
	LaunchConfigFile   = "dt-launch-config.xml"
)

// Operator-context attributes used by the validator and by metric
// inference.
var (
	ApplicationWindowCount = NewAttributeKeyWithDefault[int]("APPLICATION_WINDOW_COUNT", 1)
	CheckpointWindowCount  = NewAttributeKeyWithDefault[int]("CHECKPOINT_WINDOW_COUNT", 30)
	ProcessingModeAttr     = NewAttributeKey[ProcessingMode]("PROCESSING_MODE")
	PartitionerAttr        = NewAttributeKey[partition.Partitioner]("PARTITIONER")
	MetricsAggregatorAttr  = NewAttributeKey[*MetricAggregator]("METRICS_AGGREGATOR")
)

// Port-context attribute used by the !partitionable check.
var PartitionParallelAttr = NewAttributeKeyWithDefault[bool]("PARTITION_PARALLEL", false)
