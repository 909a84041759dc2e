package extraction

import "fmt"

const seizurePromptTemplate = `Extract all seizure events from the provided medical report and return them in a JSON list. Each seizure event should include the following fields:
1. **start_time**: The start time of the seizure in the format ` + "`HH:MM:SS`" + ` (e.g., ` + "`06:32:06`" + `).
2. **electrodes_involved**: A list of electrodes involved at seizure onset, separated by commas (e.g., ` + "`['RMH1', 'RMH2']`" + `).
3. **duration**: The duration of the seizure in a human-readable format (e.g., ` + "`1 min 30 sec`" + `).
Return only the JSON list and nothing else. Here is the medical report: %s`

const drugPromptTemplate = `Extract all drug administration details from the following medical report and return them in a JSON list. Each drug administration should include the following fields:
1. ` + "`name`" + `: The name of the drug (e.g., Lamotrigine).
2. ` + "`dose_mg`" + `: The amount of drug administered in milligrams (e.g., '1000').
3. ` + "`time_of_administration`" + `: The times of day the drug was given, when the report states them.
4. ` + "`frequency_code`" + `: The clinical code associated with the administration frequency (e.g., 'BID', 'QD', 'QHS', 'mg/mg').
**Clinical Codes and Definitions:**
QD (quaque die): Once daily.
BID (bis in die): Twice daily.
TID (ter in die): Three times daily.
QID (quater in die): Four times daily.
QHS (quaque hora somni): Every night at bedtime.
PRN (pro re nata): As needed.
QxH (quaque x hora): Every x hours (e.g., Q4H means every 4 hours).
AC (ante cibum): Before meals.
PC (post cibum): After meals.
HS (hora somni): At bedtime.
STAT (statim): Immediately.
QAM (quaque ante meridiem): Every morning.
QPM (quaque post meridiem): Every evening.
mg/mg: Twice a day (e.g., '200mg/mg' means 200mg in the morning and 200mg in the evening).
If a drug was stopped, do not include it in the list. Focus only on drugs that were actively administered.
Here is the medical report: %s`

func seizurePrompt(dayText string) string {
	return fmt.Sprintf(seizurePromptTemplate, dayText)
}

func drugPrompt(dayText string) string {
	return fmt.Sprintf(drugPromptTemplate, dayText)
}
