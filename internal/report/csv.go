package report

import (
	"fmt"
	"strconv"
	"strings"

	"runsplits/internal/analysis"
)

// Column order and header labels are a compatibility contract with the
// tools that already consume these reports; never reorder or translate.
var columns = []string{
	"计圈", "时间", "累积时间", "距离公里", "平均配速分钟/千米",
	"平均坡度调整配速分钟/千米", "平均心率bpm", "最大心率bpm",
	"累计爬升米", "累计下降米", "平均功率瓦", "平均 W/kg",
	"最大功率瓦", "最大 W/kg", "平均步频每分钟步数", "平均触地时间毫秒",
	"平均 GCT 平衡%", "平均步长米", "平均垂直摆动cm", "平均垂直步幅比%",
	"热量消耗卡路里", "平均温度", "最佳配速分钟/千米", "最高步频每分钟步数",
	"移动时间", "平均移动配速分钟/千米", "平均步速损失厘米/秒", "平均步速损失百分比%",
}

// summaryLabel stands in for the lap number on the closing row.
const summaryLabel = "统计"

// paceLossSentinel fills the two trailing summary columns, whose values
// no input source provides.
const paceLossSentinel = "--"

// utf8BOM lets spreadsheet tools detect the encoding of the CJK headers.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Filename returns the report file name for an activity.
func Filename(activityID int64) string {
	return fmt.Sprintf("activity_%d.csv", activityID)
}

// Generate renders laps plus the activity summary as the fixed-schema
// CSV report: a BOM, the header, one numbered row per lap, and the
// summary row. Every field is quoted and rows end in CRLF.
func Generate(laps []analysis.Lap, summary analysis.Summary) []byte {
	var b strings.Builder
	b.Write(utf8BOM)
	writeRow(&b, columns)

	var cumulativeTime, cumulativeKm float64
	for i, lap := range laps {
		lapKm := lap.DistanceMeters / 1000
		cumulativeTime += lap.TimeSeconds
		cumulativeKm += lapKm

		pace := lap.Pace
		if pace == "" {
			pace = PaceFromDistanceTime(lap.DistanceMeters, lap.TimeSeconds)
		}

		writeRow(&b, []string{
			strconv.Itoa(i + 1),
			FormatTime(lap.TimeSeconds),
			FormatTime(cumulativeTime),
			fmt.Sprintf("%.2f", lapKm),
			pace,
			orPace(lap.GradeAdjustedPace, pace),
			intCell(lap.AvgHeartrate),
			intCell(lap.MaxHeartrate),
			intCell(lap.ElevationGain),
			intCell(lap.ElevationLoss),
			intCell(lap.AvgPower),
			floatCell(lap.AvgPowerPerKg),
			intCell(lap.MaxPower),
			floatCell(lap.MaxPowerPerKg),
			intCell(lap.AvgCadence),
			intCell(lap.AvgGroundContactTime),
			lap.GCTBalance,
			floatCell(lap.AvgStrideLength),
			floatCell(lap.AvgVerticalOscillation),
			floatCell(lap.AvgVerticalRatio),
			intCell(lap.Calories),
			intCell(lap.AvgTemperature),
			orPace(lap.BestPace, pace),
			intCell(lap.MaxCadence),
			FormatTime(orValue(lap.MovingTimeSeconds, lap.TimeSeconds)),
			orPace(lap.MovingPace, pace),
			floatCell(lap.PaceLoss),
			floatCell(lap.PaceLossPercent),
		})
	}

	// Zero totals mean the source had none; the laps themselves are then
	// the best available account of the whole activity.
	totalTime := summary.TotalTimeSeconds
	if totalTime <= 0 {
		totalTime = cumulativeTime
	}
	totalKm := summary.TotalDistanceKm
	if totalKm <= 0 {
		totalKm = cumulativeKm
	}
	avgPace := PaceFromDistanceTime(totalKm*1000, totalTime)

	writeRow(&b, []string{
		summaryLabel,
		FormatTime(totalTime),
		FormatTime(totalTime),
		fmt.Sprintf("%.2f", totalKm),
		avgPace,
		orPace(summary.GradeAdjustedPace, avgPace),
		intCell(summary.AvgHeartrate),
		intCell(summary.MaxHeartrate),
		intCell(summary.ElevationGain),
		intCell(summary.ElevationLoss),
		intCell(summary.AvgPower),
		floatCell(summary.AvgPowerPerKg),
		intCell(summary.MaxPower),
		floatCell(summary.MaxPowerPerKg),
		intCell(summary.AvgCadence),
		intCell(summary.AvgGroundContactTime),
		summary.GCTBalance,
		floatCell(summary.AvgStrideLength),
		floatCell(summary.AvgVerticalOscillation),
		floatCell(summary.AvgVerticalRatio),
		intCell(summary.TotalCalories),
		intCell(summary.AvgTemperature),
		orPace(summary.BestPace, avgPace),
		intCell(summary.MaxCadence),
		FormatTime(orValue(summary.MovingTimeSeconds, totalTime)),
		orPace(summary.MovingPace, avgPace),
		paceLossSentinel,
		paceLossSentinel,
	})

	return []byte(b.String())
}

// writeRow emits one row with every field quoted, embedded quotes
// doubled, and a CRLF terminator.
func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orPace(pace, fallback string) string {
	if pace == "" {
		return fallback
	}
	return pace
}

func orValue(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
