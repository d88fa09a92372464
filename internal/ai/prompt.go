package ai

// 提示词模板，与评分/建议的解析逻辑配套，调整措辞时需同步检查解析正则
const riskPromptTemplate = `Analyze the following project description for potential risks:

%s

Please provide:
1. Overall risk score (1-10)
2. Identified red flags (if any)
3. Legitimacy assessment
4. Recommendation (approve/reject/review)`

const suggestionPromptTemplate = `Review the following project description and provide constructive suggestions to improve its appeal to potential funders:

%s

Please provide:
1. Three specific improvements for clarity
2. Two suggestions to increase credibility
3. One recommendation for better presentation`

const chatSystemPrompt = `You are a helpful AI assistant for GhostFund, a privacy-focused crowdfunding platform. Help users with their questions about creating and funding projects, privacy features, and platform functionality.`
