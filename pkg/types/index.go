package types

// Semester groups the lessons discovered under one semester heading.
// Lessons keep insertion order; titles are unique within a semester and the
// last accepted record for a title wins.
type Semester struct {
	Label   string
	Lessons []*LessonRecord
}

// Lesson returns the record for an exact title, or nil.
func (s *Semester) Lesson(title string) *LessonRecord {
	for _, rec := range s.Lessons {
		if rec.Title == title {
			return rec
		}
	}
	return nil
}

// Put inserts a record, replacing any existing record with the same title
// in place so discovery order is preserved.
func (s *Semester) Put(rec *LessonRecord) {
	for i, existing := range s.Lessons {
		if existing.Title == rec.Title {
			s.Lessons[i] = rec
			return
		}
	}
	s.Lessons = append(s.Lessons, rec)
}

// UniversityIndex is the in-memory form of one university's curriculum:
// ordered semesters, each holding ordered lessons.
type UniversityIndex struct {
	Name      string
	Country   string
	Semesters []*Semester
}

// Semester returns the semester with the given label, or nil.
func (u *UniversityIndex) Semester(label string) *Semester {
	for _, sem := range u.Semesters {
		if sem.Label == label {
			return sem
		}
	}
	return nil
}

// EnsureSemester returns the semester with the given label, creating and
// appending it if absent.
func (u *UniversityIndex) EnsureSemester(label string) *Semester {
	if sem := u.Semester(label); sem != nil {
		return sem
	}
	sem := &Semester{Label: label}
	u.Semesters = append(u.Semesters, sem)
	return sem
}

// LessonCount returns the total number of lessons across all semesters.
func (u *UniversityIndex) LessonCount() int {
	n := 0
	for _, sem := range u.Semesters {
		n += len(sem.Lessons)
	}
	return n
}

// Clone returns a deep copy of the index.
func (u *UniversityIndex) Clone() *UniversityIndex {
	dst := &UniversityIndex{Name: u.Name, Country: u.Country}
	for _, sem := range u.Semesters {
		cp := &Semester{Label: sem.Label, Lessons: make([]*LessonRecord, len(sem.Lessons))}
		for i, rec := range sem.Lessons {
			cp.Lessons[i] = rec.Clone()
		}
		dst.Semesters = append(dst.Semesters, cp)
	}
	return dst
}
