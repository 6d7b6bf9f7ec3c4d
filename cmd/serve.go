package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/chordreduce/model"
	"github.com/jsphweid/chordreduce/reduce"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serves",
	Long:  `serves`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: message})
}

func HandleReduce(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "Could not read request body")
		return
	}

	var input model.ReduceRequestBody
	err = json.Unmarshal(reqBody, &input)
	if err != nil {
		writeError(w, 400, "Could not unmarshal request body: "+err.Error())
		return
	}

	weight, err := reduce.WeightByName(input.Weight)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	reducer := reduce.NewReducer()
	if input.MaxChords > 0 {
		reducer.MaxChords = input.MaxChords
	}
	if input.TrimBelow > 0 {
		reducer.TrimBelow = input.TrimBelow
	}
	reducer.Weight = weight

	reduction, err := reducer.Reduce(&input.Score)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	parts := reduction.Parts
	res := model.ReduceResponse{
		Id:         uuid.New().String(),
		Partwise:   parts[:len(parts)-1],
		Chordified: parts[len(parts)-1],
	}
	json.NewEncoder(w).Encode(res)
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/reduce", HandleReduce).Methods("POST")
	handler := cors.Default().Handler(router)
	fmt.Println("Listening on :8080")
	log.Fatal(http.ListenAndServe(":8080", handler))
}
