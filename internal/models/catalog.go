package models

// Group is a training track determining the valid lesson catalog.
type Group string

const (
	GroupPPL  Group = "PPL"
	GroupATPL Group = "ATPL"
)

// Course is a catalog entry for a theoretical knowledge subject.
type Course struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// The EASA theoretical knowledge syllabus per licence track. Order matters:
// it is the display and export order everywhere.
var pplCourses = []Course{
	{Code: "10", Label: "010 - Hava Hukuku"},
	{Code: "20", Label: "020 - Uçak Genel Bilgisi"},
	{Code: "30", Label: "030 - Uçuş Performansı ve Planlama"},
	{Code: "40", Label: "040 - İnsan Performansı ve Limitleri"},
	{Code: "50", Label: "050 - Meteoroloji"},
	{Code: "60", Label: "060 - Navigasyon"},
	{Code: "70", Label: "070 - Operasyonel Prosedürler"},
	{Code: "80", Label: "080 - Uçuş Prensipleri"},
	{Code: "90", Label: "090 - İletişim"},
}

var atplCourses = []Course{
	{Code: "10", Label: "010 - Hava Hukuku"},
	{Code: "21", Label: "021 - Uçak Genel Bilgisi - Airframe/Systems"},
	{Code: "22", Label: "022 - Uçak Genel Bilgisi - Instrumentation"},
	{Code: "31", Label: "031 - Uçuş Performansı ve Planlama - Mass & Balance"},
	{Code: "32", Label: "032 - Uçuş Performansı ve Planlama - Performance"},
	{Code: "33", Label: "033 - Uçuş Planlama ve Monitöring"},
	{Code: "40", Label: "040 - İnsan Performansı ve Limitleri"},
	{Code: "50", Label: "050 - Meteoroloji"},
	{Code: "61", Label: "061 - Genel Navigasyon"},
	{Code: "62", Label: "062 - Radyo Navigasyon"},
	{Code: "70", Label: "070 - Operasyonel Prosedürler"},
	{Code: "81", Label: "081 - Uçuş Prensipleri"},
	{Code: "91", Label: "091 - VFR İletişim"},
	{Code: "92", Label: "092 - IFR İletişim"},
}

var periodOptions = map[Group][]string{
	GroupPPL:  {"PPL aktif"},
	GroupATPL: {"ATPL aktif", "ATPL akademik tamamlamış"},
}

// ValidGroup reports whether the group is a known training track.
func ValidGroup(group Group) bool {
	return group == GroupPPL || group == GroupATPL
}

// CoursesFor returns the ordered catalog for a group. The returned slice is
// a copy; callers may mutate it freely.
func CoursesFor(group Group) []Course {
	var src []Course
	switch group {
	case GroupPPL:
		src = pplCourses
	case GroupATPL:
		src = atplCourses
	default:
		return nil
	}
	out := make([]Course, len(src))
	copy(out, src)
	return out
}

// CourseCodesFor returns just the catalog codes for a group, in order.
func CourseCodesFor(group Group) []string {
	courses := CoursesFor(group)
	codes := make([]string, len(courses))
	for i, c := range courses {
		codes[i] = c.Code
	}
	return codes
}

// CourseLabel resolves a lesson code to its display label, falling back to
// the raw code for values no longer in the catalog.
func CourseLabel(group Group, code string) string {
	for _, c := range CoursesFor(group) {
		if c.Code == code {
			return c.Label
		}
	}
	return code
}

// PeriodOptionsFor returns the valid cohort labels for a group.
func PeriodOptionsFor(group Group) []string {
	src := periodOptions[group]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ValidPeriod reports whether the period belongs to the group's option set.
func ValidPeriod(group Group, period string) bool {
	for _, p := range periodOptions[group] {
		if p == period {
			return true
		}
	}
	return false
}
