package roster

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV exports rows in the dashboard's column order.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	header := []string{"Name", "Email", "Mobile", "Level", "Institution", "Progress", "Avg Score", "Certificate", "Date", "Rating", "Student Comment"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		cert := "No"
		if r.CertificateDownloaded {
			cert = "Yes"
		}
		rating, comment := "", ""
		if r.StudentFeedback != nil {
			rating = strconv.Itoa(r.StudentFeedback.Rating)
			comment = r.StudentFeedback.Comment
		}
		rec := []string{
			r.FullName,
			r.Email,
			r.Mobile,
			r.Grade,
			r.SchoolName,
			strconv.Itoa(r.Progress) + "%",
			strconv.Itoa(r.AverageScore),
			cert,
			r.RegistrationDate,
			rating,
			comment,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
