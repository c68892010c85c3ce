package model

type Room struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"course_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}
