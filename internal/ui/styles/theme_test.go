package styles

import (
	"testing"

	"github.com/matryer/is"

	"github.com/tgienger/todo/internal/models"
)

func TestForMode(t *testing.T) {
	is := is.New(t)
	is.Equal(ForMode(models.ThemeLight).Name, TokyoNightDay.Name)
	is.Equal(ForMode(models.ThemeDark).Name, TokyoNight.Name)

	sys := ForMode(models.ThemeSystem).Name
	is.True(sys == TokyoNight.Name || sys == TokyoNightDay.Name)
}

func TestUse(t *testing.T) {
	is := is.New(t)
	defer func() { Current = TokyoNight }()

	Use(models.ThemeLight)
	is.Equal(Current.Name, TokyoNightDay.Name)
	Use(models.ThemeDark)
	is.Equal(Current.Name, TokyoNight.Name)
}

func TestPriorityAndCategoryColors(t *testing.T) {
	is := is.New(t)
	th := TokyoNight
	is.Equal(th.PriorityColor(models.PriorityHigh), th.Error)
	is.Equal(th.PriorityColor(models.PriorityMedium), th.Warning)
	is.Equal(th.PriorityColor(models.PriorityLow), th.Success)
	is.Equal(th.CategoryColor(models.CategoryWork), th.Primary)
	is.Equal(th.CategoryColor(models.CategoryStudy), th.Secondary)
	is.Equal(th.CategoryColor(models.CategoryPersonal), th.Accent)
}

func TestContentWidth(t *testing.T) {
	is := is.New(t)
	is.Equal(ContentWidth(120), MaxWidth)
	is.Equal(ContentWidth(40), 40)
}
