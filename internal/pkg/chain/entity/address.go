package entity

const EmptyCode = "0x"

type AddressInfo struct {
	Address          string `json:"address"`
	Balance          string `json:"balance"`
	TransactionCount string `json:"transactionCount"`
	Code             string `json:"code"`
	IsContract       bool   `json:"isContract"`
}

func IsContractCode(code string) bool {
	return code != "" && code != EmptyCode
}
