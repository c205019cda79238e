package abi

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var ERC721TokenABI abi.ABI

func init() {
	_abi, err := abi.JSON(strings.NewReader(erc721ABIJson))
	if err != nil {
		panic("Failed to parse ABI")
	}
	ERC721TokenABI = _abi
}

var erc721ABIJson = `
[
	{
		"inputs":[
		{
			"internalType":"uint256",
			"name":"tokenId",
			"type":"uint256"
		}
		],
		"name":"ownerOf",
		"outputs":[
		{
			"internalType":"address",
			"name":"",
			"type":"address"
		}
		],
		"stateMutability":"view",
		"type":"function"
	},
	{
		"inputs":[
		{
			"internalType":"address",
			"name":"owner",
			"type":"address"
		},
		{
			"internalType":"address",
			"name":"operator",
			"type":"address"
		}
		],
		"name":"isApprovedForAll",
		"outputs":[
		{
			"internalType":"bool",
			"name":"",
			"type":"bool"
		}
		],
		"stateMutability":"view",
		"type":"function"
	},
	{
		"inputs":[
		{
			"internalType":"uint256",
			"name":"tokenId",
			"type":"uint256"
		}
		],
		"name":"getApproved",
		"outputs":[
		{
			"internalType":"address",
			"name":"",
			"type":"address"
		}
		],
		"stateMutability":"view",
		"type":"function"
	},
	{
		"inputs":[
		{
			"internalType":"bytes4",
			"name":"interfaceId",
			"type":"bytes4"
		}
		],
		"name":"supportsInterface",
		"outputs":[
		{
			"internalType":"bool",
			"name":"",
			"type":"bool"
		}
		],
		"stateMutability":"view",
		"type":"function"
	}
]
`
