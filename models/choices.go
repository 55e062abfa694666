package models

// Category 是拍賣商品的分類
type Category string

const (
	CategoryApparelAndAccessories    Category = "1"
	CategoryConsumerElectronics      Category = "2"
	CategoryHomeAndKitchenAppliances Category = "3"
	CategoryHealthAndBeauty          Category = "4"
	CategoryFurnitureAndDecor        Category = "5"
	CategorySportsAndFitness         Category = "6"
	CategoryBooksAndMedia            Category = "7"
	CategoryToysAndGames             Category = "8"
	CategoryFoodAndBeverage          Category = "9"
	CategoryAutoAndParts             Category = "10"
	CategoryOther                    Category = "11"
)

// Choice 是一個可供選擇的值與其顯示名稱
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// categoryChoices 依照顯示順序列出所有分類
var categoryChoices = []Choice{
	{Value: string(CategoryApparelAndAccessories), Label: "Apparel and Accessories"},
	{Value: string(CategoryConsumerElectronics), Label: "Consumer Electronics"},
	{Value: string(CategoryHomeAndKitchenAppliances), Label: "Home and Kitchen Appliances"},
	{Value: string(CategoryHealthAndBeauty), Label: "Health and Beauty"},
	{Value: string(CategoryFurnitureAndDecor), Label: "Furniture and Decor"},
	{Value: string(CategorySportsAndFitness), Label: "Sports and Fitness"},
	{Value: string(CategoryBooksAndMedia), Label: "Books and Media"},
	{Value: string(CategoryToysAndGames), Label: "Toys and Games"},
	{Value: string(CategoryFoodAndBeverage), Label: "Food and Beverage"},
	{Value: string(CategoryAutoAndParts), Label: "Auto and Parts"},
	{Value: string(CategoryOther), Label: "Other or Uncategorized"},
}

// CategoryChoices 回傳所有分類的副本
func CategoryChoices() []Choice {
	return append([]Choice(nil), categoryChoices...)
}

// Valid 判斷分類是否為已定義的值
func (c Category) Valid() bool {
	for _, choice := range categoryChoices {
		if choice.Value == string(c) {
			return true
		}
	}
	return false
}

// Label 回傳分類的顯示名稱，未定義的分類回傳空字串
func (c Category) Label() string {
	for _, choice := range categoryChoices {
		if choice.Value == string(c) {
			return choice.Label
		}
	}
	return ""
}

// Status 是拍賣商品的狀態
type Status string

const (
	StatusActive   Status = "A"
	StatusDeactive Status = "D"
	StatusClosed   Status = "C"
)

var statusChoices = []Choice{
	{Value: string(StatusActive), Label: "Active"},
	{Value: string(StatusDeactive), Label: "Deactive"},
	{Value: string(StatusClosed), Label: "Closed"},
}

// StatusChoices 回傳所有狀態的副本
func StatusChoices() []Choice {
	return append([]Choice(nil), statusChoices...)
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusDeactive, StatusClosed:
		return true
	}
	return false
}

func (s Status) Label() string {
	for _, choice := range statusChoices {
		if choice.Value == string(s) {
			return choice.Label
		}
	}
	return ""
}
