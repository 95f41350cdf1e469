package calendar

import "time"

// ── 日历工具 ────────────────────────────────────────────────
//
// 职责：德国法定节假日判定、慕尼黑高校授课时段判定、月份算术。
// 全部为纯函数，时间语义：
//   - 节假日 / 授课时段按「日」判定，只看 year/month/day
//   - AddMonths 保留时分秒与时区
// ─────────────────────────────────────────────────────────────

// EasterSunday 计算某年的复活节星期日（公历，Anonymous Gregorian 算法）
func EasterSunday(year int, loc *time.Location) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

// easterOffsets 复活节相对节假日：与复活节星期日的整天差 → 名称
var easterOffsets = map[int]string{
	-2: "Karfreitag",
	0:  "Ostersonntag",
	1:  "Ostermontag",
	39: "Christi Himmelfahrt",
	49: "Pfingstsonntag",
	50: "Pfingstmontag",
	60: "Fronleichnam",
}

// IsHoliday 判断日期是否为（巴伐利亚）法定节假日
// 先查固定日期表，再按与当年复活节的天数差查表。
// 非节假日返回 (false, "")。
func IsHoliday(d time.Time) (bool, string) {
	month, day := d.Month(), d.Day()

	// 固定节假日
	switch {
	case month == time.May && day == 1:
		return true, "Tag der Arbeit"
	case month == time.August && day == 15:
		return true, "Mariä Himmelfahrt"
	case month == time.October && day == 3:
		return true, "Tag der Deutschen Einheit"
	case month == time.November && day == 1:
		return true, "Allerheiligen"
	case (month == time.December && day >= 24) || (month == time.January && day <= 6):
		return true, "Weihnachten"
	}

	// 复活节相对节假日
	// 天数差在 UTC 里算，避免夏令时切换导致两个本地零点相差不是整 24h
	easter := EasterSunday(d.Year(), time.UTC)
	day0 := time.Date(d.Year(), month, day, 0, 0, 0, 0, time.UTC)
	diff := int(day0.Sub(easter).Hours() / 24)

	if name, ok := easterOffsets[diff]; ok {
		return true, name
	}

	return false, ""
}

// LectureTime 判断日期是否处于授课时段，并返回时段名称
//
// 学期切换日取 d 所在年份的 2月1日 / 4月1日 / 8月1日 / 10月1日。
// 注意：切换日的先后比较以 asOf（而非 d）为基准——这是对原系统行为
// 的刻意保留；调用方传 time.Now() 即得到原有语义，测试可固定 asOf。
func LectureTime(d, asOf time.Time) (bool, string) {
	endOfWinter := time.Date(d.Year(), time.February, 1, 0, 0, 0, 0, d.Location())
	startOfSummer := time.Date(d.Year(), time.April, 1, 0, 0, 0, 0, d.Location())
	endOfSummer := time.Date(d.Year(), time.August, 1, 0, 0, 0, 0, d.Location())
	startOfWinter := time.Date(d.Year(), time.October, 1, 0, 0, 0, 0, d.Location())

	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, d.Location())

	if endOfWinter.After(today) {
		return true, "Wintersemester"
	}
	if startOfSummer.After(today) {
		return false, "Vorlesungsfreie Zeit (Winter)"
	}
	if endOfSummer.After(today) {
		return true, "Sommersemester"
	}
	if startOfWinter.After(today) {
		return false, "Vorlesungsfreie Zeit (Sommer)"
	}

	return true, "Wintersemester"
}

// AddMonths 将时间平移 n 个月，保留日、时分秒与时区
//
// 目标月没有对应日期时（如 1月31日 +1 个月）钳制到目标月最后一天。
// 不能用 time.AddDate：其溢出语义会把 1月31日 +1 个月规范化成 3月3日。
func AddMonths(t time.Time, n int) time.Time {
	// 月份序号转 0 起始做模运算，年进位用向下取整除法
	months := int(t.Month()) - 1 + n
	year := t.Year() + months/12
	month := months % 12
	if month < 0 {
		month += 12
		year--
	}

	day := t.Day()
	if last := daysInMonth(year, time.Month(month+1)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month+1), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysInMonth 某年某月的天数
func daysInMonth(year int, month time.Month) int {
	// 下月第 0 天即本月最后一天
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthGrid 返回某月日历网格包含的全部日期
//
// 网格以星期一为每周起点，含相邻月份的补位日，
// 与标准月视图日历一致：从包含 1 号的那周的周一到包含月末的那周的周日。
func MonthGrid(year int, month time.Month, loc *time.Location) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := time.Date(year, month, daysInMonth(year, month), 0, 0, 0, 0, loc)

	// 回退到周一
	start := first.AddDate(0, 0, -mondayIndex(first.Weekday()))
	// 前进到周日
	end := last.AddDate(0, 0, 6-mondayIndex(last.Weekday()))

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// mondayIndex 星期一为 0 的星期序号
func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}
