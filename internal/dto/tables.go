package dto

type CountResponse struct {
	Count int `json:"count"`
}

type ModifiedResponse struct {
	Modified int `json:"modified"`
}

type DeletedResponse struct {
	Deleted int `json:"deleted"`
}
