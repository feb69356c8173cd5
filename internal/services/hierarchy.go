package services

import (
	"context"
	"errors"
	"strings"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

const logoCategory = "company-logos"

// HierarchyService manages companies, departments and rehber groups, the
// organizational tree users are placed in.
type HierarchyService struct {
	db    *gorm.DB
	files FileStore
}

func NewHierarchyService(db *gorm.DB, files FileStore) *HierarchyService {
	return &HierarchyService{db: db, files: files}
}

type CompanyInput struct {
	Name string
	Logo *Upload
}

type DepartmentInput struct {
	Name      string
	CompanyID uint
}

type RehberGroupInput struct {
	Name         string
	DepartmentID uint
}

// Supervisor is a REHBER user together with the workers reporting to them.
type Supervisor struct {
	models.User
	Workers []models.User `json:"workers"`
}

func (s *HierarchyService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies := []models.Company{}

	if err := s.db.WithContext(ctx).
		Preload("Departments").
		Order("name ASC").
		Find(&companies).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve companies", err)
	}

	return companies, nil
}

func (s *HierarchyService) CreateCompany(ctx context.Context, in CompanyInput) (*models.Company, error) {
	company := &models.Company{}
	if err := s.applyCompany(company, in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, apperr.Internal("failed to create company", err)
	}

	return company, nil
}

func (s *HierarchyService) UpdateCompany(ctx context.Context, id uint, in CompanyInput) (*models.Company, error) {
	if id == 0 {
		return nil, apperr.Validation("id is required")
	}

	db := s.db.WithContext(ctx)

	var company models.Company
	if err := db.First(&company, id).Error; err != nil {
		return nil, lookupErr(err, "company")
	}

	if err := s.applyCompany(&company, in); err != nil {
		return nil, err
	}

	if err := db.Save(&company).Error; err != nil {
		return nil, apperr.Internal("failed to update company", err)
	}

	return &company, nil
}

func (s *HierarchyService) applyCompany(company *models.Company, in CompanyInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("name is required")
	}
	company.Name = name

	if in.Logo != nil {
		ref, err := s.files.Save(logoCategory, in.Logo.Filename, in.Logo.Content)
		if err != nil {
			return apperr.Internal("failed to store logo", err)
		}
		company.LogoURL = ref
	}

	return nil
}

// DeleteCompany refuses while departments still belong to the company.
func (s *HierarchyService) DeleteCompany(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company models.Company
		if err := tx.Select("id").First(&company, id).Error; err != nil {
			return lookupErr(err, "company")
		}

		var departments int64
		if err := tx.Model(&models.Department{}).Where("company_id = ?", id).Count(&departments).Error; err != nil {
			return apperr.Internal("failed to count departments", err)
		}
		if departments > 0 {
			return apperr.Conflict("company still has %d departments", departments)
		}

		if err := tx.Delete(&company).Error; err != nil {
			return apperr.Internal("failed to delete company", err)
		}
		return nil
	})
}

func (s *HierarchyService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	departments := []models.Department{}

	if err := s.db.WithContext(ctx).
		Preload("Company").
		Order("name ASC").
		Find(&departments).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve departments", err)
	}

	return departments, nil
}

func (s *HierarchyService) CreateDepartment(ctx context.Context, in DepartmentInput) (*models.Department, error) {
	department := &models.Department{}
	if err := s.applyDepartment(s.db.WithContext(ctx), department, in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(department).Error; err != nil {
		return nil, apperr.Internal("failed to create department", err)
	}

	return department, nil
}

func (s *HierarchyService) UpdateDepartment(ctx context.Context, id uint, in DepartmentInput) (*models.Department, error) {
	if id == 0 {
		return nil, apperr.Validation("id is required")
	}

	db := s.db.WithContext(ctx)

	var department models.Department
	if err := db.First(&department, id).Error; err != nil {
		return nil, lookupErr(err, "department")
	}

	if err := s.applyDepartment(db, &department, in); err != nil {
		return nil, err
	}

	if err := db.Omit("Company").Save(&department).Error; err != nil {
		return nil, apperr.Internal("failed to update department", err)
	}

	return &department, nil
}

func (s *HierarchyService) applyDepartment(db *gorm.DB, department *models.Department, in DepartmentInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.CompanyID == 0 {
		return apperr.Validation("name and companyId are required")
	}

	var company models.Company
	if err := db.Select("id").First(&company, in.CompanyID).Error; err != nil {
		return lookupErr(err, "company")
	}

	department.Name = name
	department.CompanyID = in.CompanyID
	return nil
}

// DeleteDepartment removes a department and its rehber groups. Users placed
// in it keep existing without a department.
func (s *HierarchyService) DeleteDepartment(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var department models.Department
		if err := tx.Select("id").First(&department, id).Error; err != nil {
			return lookupErr(err, "department")
		}

		groups := tx.Model(&models.RehberGroup{}).Select("id").Where("department_id = ?", id)
		if err := tx.Model(&models.User{}).
			Where("rehber_group_id IN (?)", groups).
			Update("rehber_group_id", nil).Error; err != nil {
			return apperr.Internal("failed to detach users", err)
		}

		if err := tx.Model(&models.User{}).
			Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return apperr.Internal("failed to detach users", err)
		}

		if err := tx.Where("department_id = ?", id).Delete(&models.RehberGroup{}).Error; err != nil {
			return apperr.Internal("failed to delete rehber groups", err)
		}

		if err := tx.Delete(&department).Error; err != nil {
			return apperr.Internal("failed to delete department", err)
		}
		return nil
	})
}

func (s *HierarchyService) ListRehberGroups(ctx context.Context) ([]models.RehberGroup, error) {
	groups := []models.RehberGroup{}

	if err := s.db.WithContext(ctx).
		Preload("Department.Company").
		Order("name ASC").
		Find(&groups).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve rehber groups", err)
	}

	return groups, nil
}

func (s *HierarchyService) CreateRehberGroup(ctx context.Context, in RehberGroupInput) (*models.RehberGroup, error) {
	group := &models.RehberGroup{}
	if err := s.applyRehberGroup(s.db.WithContext(ctx), group, in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, apperr.Internal("failed to create rehber group", err)
	}

	return group, nil
}

func (s *HierarchyService) UpdateRehberGroup(ctx context.Context, id uint, in RehberGroupInput) (*models.RehberGroup, error) {
	if id == 0 {
		return nil, apperr.Validation("id is required")
	}

	db := s.db.WithContext(ctx)

	var group models.RehberGroup
	if err := db.First(&group, id).Error; err != nil {
		return nil, lookupErr(err, "rehber group")
	}

	if err := s.applyRehberGroup(db, &group, in); err != nil {
		return nil, err
	}

	if err := db.Omit("Department").Save(&group).Error; err != nil {
		return nil, apperr.Internal("failed to update rehber group", err)
	}

	return &group, nil
}

func (s *HierarchyService) applyRehberGroup(db *gorm.DB, group *models.RehberGroup, in RehberGroupInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.DepartmentID == 0 {
		return apperr.Validation("name and departmentId are required")
	}

	var department models.Department
	if err := db.Select("id").First(&department, in.DepartmentID).Error; err != nil {
		return lookupErr(err, "department")
	}

	var existing models.RehberGroup
	err := db.Select("id").
		Where("name = ? AND department_id = ? AND id <> ?", name, in.DepartmentID, group.ID).
		First(&existing).Error
	if err == nil {
		return apperr.Validation("a rehber group named %q already exists in this department", name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internal("failed to check rehber group name", err)
	}

	group.Name = name
	group.DepartmentID = in.DepartmentID
	return nil
}

func (s *HierarchyService) DeleteRehberGroup(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.RehberGroup
		if err := tx.Select("id").First(&group, id).Error; err != nil {
			return lookupErr(err, "rehber group")
		}

		if err := tx.Model(&models.User{}).
			Where("rehber_group_id = ?", id).
			Update("rehber_group_id", nil).Error; err != nil {
			return apperr.Internal("failed to detach users", err)
		}

		if err := tx.Delete(&group).Error; err != nil {
			return apperr.Internal("failed to delete rehber group", err)
		}
		return nil
	})
}

// Structure lists every REHBER user with the ISCI workers whose rehberId
// points at them.
func (s *HierarchyService) Structure(ctx context.Context) ([]Supervisor, error) {
	db := s.db.WithContext(ctx)

	var rehbers []models.User
	if err := db.
		Preload("Department.Company").
		Preload("RehberGroup").
		Where("role = ?", models.RoleRehber).
		Order("name ASC").
		Find(&rehbers).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve rehbers", err)
	}

	var workers []models.User
	if err := db.
		Where("role = ? AND rehber_id IS NOT NULL", models.RoleIsci).
		Order("name ASC").
		Find(&workers).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve workers", err)
	}

	byRehber := make(map[uint][]models.User)
	for _, worker := range workers {
		byRehber[*worker.RehberID] = append(byRehber[*worker.RehberID], worker)
	}

	structure := make([]Supervisor, 0, len(rehbers))
	for _, rehber := range rehbers {
		team := byRehber[rehber.ID]
		if team == nil {
			team = []models.User{}
		}
		structure = append(structure, Supervisor{User: rehber, Workers: team})
	}

	return structure, nil
}
