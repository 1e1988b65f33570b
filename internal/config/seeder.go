package config

import (
	"log"
	"time"

	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedDemoData creates a demo hospital with departments, doctors and
// patients. Existing rows are kept, so reruns are safe.
func SeedDemoData(db *gorm.DB) error {
	hospital, err := seedHospital(db)
	if err != nil {
		return err
	}
	if err := seedHospitalConfig(db, hospital.ID); err != nil {
		return err
	}
	if err := seedDepartments(db, hospital.ID); err != nil {
		return err
	}
	if err := seedDoctors(db, hospital.ID); err != nil {
		return err
	}
	if err := seedPatients(db, hospital.ID); err != nil {
		return err
	}
	if err := seedStaff(db, hospital.ID); err != nil {
		return err
	}
	log.Println("✅ Demo data seeded successfully")
	return nil
}

func seedHospital(db *gorm.DB) (*models.Hospital, error) {
	var hospital models.Hospital
	err := db.Where("code = ?", "DEMO").First(&hospital).Error
	if err == nil {
		return &hospital, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	addr := "123 Demo Road, Bangkok"
	phone := "02-000-0000"
	hospital = models.Hospital{
		Code:     "DEMO",
		Name:     "Demo General Clinic",
		Timezone: "Asia/Bangkok",
		Address:  &addr,
		Phone:    &phone,
		IsActive: true,
	}
	if err := db.Create(&hospital).Error; err != nil {
		return nil, err
	}
	log.Printf("   Created hospital: %s", hospital.Code)
	return &hospital, nil
}

func seedHospitalConfig(db *gorm.DB, hospitalID uint) error {
	var existing models.HospitalConfig
	err := db.Where("hospital_id = ?", hospitalID).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	cfg := models.HospitalConfig{
		HospitalID:          hospitalID,
		BookingMode:         models.BookingBoth,
		ConsultationMinutes: 15,
		BufferMinutes:       5,
		ArrivalWindowMins:   15,
		NoShowGraceMins:     30,
		TokenResetFrequency: models.ResetDaily,
		AutoReassignOnLeave: true,
	}
	if err := db.Create(&cfg).Error; err != nil {
		return err
	}

	// Mon-Sat 08:00-17:00, closed Sunday
	for weekday := 0; weekday < 7; weekday++ {
		hour := models.BusinessHour{
			HospitalConfigID: cfg.ID,
			Weekday:          weekday,
			IsOpen:           weekday != int(time.Sunday),
			OpenTime:         "08:00",
			CloseTime:        "17:00",
		}
		if err := db.Create(&hour).Error; err != nil {
			return err
		}
	}

	log.Printf("   Created hospital config (hospital=%d)", hospitalID)
	return nil
}

func seedDepartments(db *gorm.DB, hospitalID uint) error {
	departments := []models.Department{
		{HospitalID: hospitalID, Code: "GEN", Name: "General Medicine", IsActive: true},
		{HospitalID: hospitalID, Code: "CARD", Name: "Cardiology", IsActive: true},
		{HospitalID: hospitalID, Code: "PED", Name: "Pediatrics", IsActive: true},
	}

	for _, d := range departments {
		var existing models.Department
		err := db.Where("hospital_id = ? AND code = ?", hospitalID, d.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&d).Error; err != nil {
			return err
		}
		log.Printf("   Created department: %s", d.Code)

		// Cardiology uses its own token prefix and longer slots
		if d.Code == "CARD" {
			prefix := "CARD"
			consult := 30
			override := models.DepartmentConfig{
				HospitalID:          hospitalID,
				DepartmentID:        d.ID,
				TokenPrefix:         &prefix,
				ConsultationMinutes: &consult,
			}
			if err := db.Create(&override).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedDoctors(db *gorm.DB, hospitalID uint) error {
	var gen, card models.Department
	if err := db.Where("hospital_id = ? AND code = ?", hospitalID, "GEN").First(&gen).Error; err != nil {
		log.Printf("⚠️ Skipping doctor seed: department GEN not found")
		return nil
	}
	if err := db.Where("hospital_id = ? AND code = ?", hospitalID, "CARD").First(&card).Error; err != nil {
		log.Printf("⚠️ Skipping doctor seed: department CARD not found")
		return nil
	}

	limit := 40
	doctors := []models.Doctor{
		{HospitalID: hospitalID, DepartmentID: gen.ID, FullName: "Dr. Somchai Prasert", Status: models.DoctorActive, DailyPatientLimit: &limit},
		{HospitalID: hospitalID, DepartmentID: gen.ID, FullName: "Dr. Malee Srisuk", Status: models.DoctorActive},
		{HospitalID: hospitalID, DepartmentID: card.ID, FullName: "Dr. Anan Wongsa", Status: models.DoctorActive},
	}

	for _, d := range doctors {
		var existing models.Doctor
		err := db.Where("hospital_id = ? AND full_name = ?", hospitalID, d.FullName).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&d).Error; err != nil {
			return err
		}
		log.Printf("   Created doctor: %s", d.FullName)
	}
	return nil
}

func seedStaff(db *gorm.DB, hospitalID uint) error {
	staff := []models.Staff{
		{HospitalID: hospitalID, Username: "admin", Email: "admin@demo.clinicq.dev", FullName: "Demo Admin", Role: models.StaffRoleAdmin, IsActive: true},
		{HospitalID: hospitalID, Username: "reception1", Email: "reception1@demo.clinicq.dev", FullName: "Front Desk", Role: models.StaffRoleReception, IsActive: true},
	}

	for _, s := range staff {
		var existing models.Staff
		err := db.Where("username = ?", s.Username).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		hashed, err := password.Hash("changeme123")
		if err != nil {
			return err
		}
		s.Password = hashed
		if err := db.Create(&s).Error; err != nil {
			return err
		}
		log.Printf("   Created staff: %s (%s)", s.Username, s.Role)
	}
	return nil
}

func seedPatients(db *gorm.DB, hospitalID uint) error {
	patients := []models.Patient{
		{HospitalID: hospitalID, MRN: "MRN-00001", FullName: "Somsak Jaidee"},
		{HospitalID: hospitalID, MRN: "MRN-00002", FullName: "Wanida Boonmee"},
		{HospitalID: hospitalID, MRN: "MRN-00003", FullName: "Prayut Thongdee"},
	}

	for _, p := range patients {
		var existing models.Patient
		err := db.Where("mrn = ?", p.MRN).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
		log.Printf("   Created patient: %s", p.MRN)
	}
	return nil
}
